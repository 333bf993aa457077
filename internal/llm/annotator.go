package llm

import (
	"context"
	"fmt"
	"time"

	"gripe/internal/model"
)

// Annotator turns a classified complaint into an optional triage note
type Annotator struct {
	provider Provider
	config   model.LLMConfig
}

// NewAnnotator creates an annotator for the configured provider
func NewAnnotator(config model.LLMConfig) (*Annotator, error) {
	var provider Provider
	var err error

	switch config.Provider {
	case "openai":
		provider, err = NewOpenAIProvider(config)
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &Annotator{provider: provider, config: config}, nil
}

// Provider names the underlying provider
func (a *Annotator) Provider() string {
	return a.provider.Name()
}

// Annotate generates a triage note for the complaint. The caller attaches
// the note after classification; it never feeds back into scoring.
func (a *Annotator) Annotate(ctx context.Context, c *model.Complaint) (*model.TriageNote, error) {
	timeout := time.Duration(a.config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := a.provider.Annotate(ctx, NoteRequest{
		Complaint: c,
		Model:     a.config.Model,
		MaxTokens: a.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if resp.Note == "" {
		return nil, nil
	}

	return &model.TriageNote{
		Provider: a.provider.Name(),
		Model:    resp.Model,
		Note:     resp.Note,
	}, nil
}
