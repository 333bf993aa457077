package worker

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gripe/internal/engine"
	"gripe/internal/model"
)

// Filer defines the interface for filing a complaint
type Filer interface {
	QuickFile(ctx context.Context, in engine.QuickFileInput) (*model.Complaint, error)
	AnnotationEnabled() bool
	AnnotationProvider() string
}

// FileJob represents a single complaint filing job
type FileJob struct {
	Input   engine.QuickFileInput
	Filer   Filer
	Limiter *Limiter
}

// Execute executes the filing job
func (j *FileJob) Execute(ctx context.Context) Result {
	// Throttle only when the job will hit an LLM provider; purely local
	// classification runs unthrottled.
	if j.Limiter != nil && j.Filer.AnnotationEnabled() {
		if err := j.Limiter.Wait(ctx, j.Filer.AnnotationProvider()); err != nil {
			return &FileResult{Input: j.Input, Error: err}
		}
	}

	c, err := j.Filer.QuickFile(ctx, j.Input)
	if err != nil {
		return &FileResult{Input: j.Input, Error: err}
	}
	return &FileResult{Input: j.Input, Complaint: c}
}

// FileResult represents the result of a filing job
type FileResult struct {
	Input     engine.QuickFileInput
	Complaint *model.Complaint
	Error     error
}

// GetError returns the error from the filing result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchFiler files multiple complaints concurrently
type BatchFiler struct {
	filer       Filer
	concurrency int
	limiter     *Limiter
}

// NewBatchFiler creates a new batch filer. A non-positive rate disables
// throttling.
func NewBatchFiler(filer Filer, concurrency int, ratePerSecond float64, burst int) *BatchFiler {
	var limiter *Limiter
	if ratePerSecond > 0 {
		limiter = NewLimiter(ratePerSecond, burst)
	}

	return &BatchFiler{
		filer:       filer,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessInputs files multiple complaints concurrently
func (b *BatchFiler) ProcessInputs(ctx context.Context, inputs []engine.QuickFileInput) []*FileResult {
	if len(inputs) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, in := range inputs {
		pool.Submit(&FileJob{
			Input:   in,
			Filer:   b.filer,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	fileResults := make([]*FileResult, len(results))
	for i, result := range results {
		fileResults[i] = result.(*FileResult)
	}

	return fileResults
}

// ProcessFile reads complaint inputs from a file and files them concurrently
func (b *BatchFiler) ProcessFile(ctx context.Context, filePath string) ([]*FileResult, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile reads a YAML (or JSON) list of complaint inputs.
// Entries without a summary are skipped.
func ReadInputsFromFile(filePath string) ([]engine.QuickFileInput, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var raw []engine.QuickFileInput
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}

	inputs := make([]engine.QuickFileInput, 0, len(raw))
	for _, in := range raw {
		if in.Summary == "" {
			continue
		}
		inputs = append(inputs, in)
	}

	return inputs, nil
}
