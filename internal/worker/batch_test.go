package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"gripe/internal/engine"
	"gripe/internal/model"
)

// MockFiler implements the Filer interface
type MockFiler struct {
	ShouldError bool
	filed       int32
}

func (m *MockFiler) QuickFile(ctx context.Context, in engine.QuickFileInput) (*model.Complaint, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.ShouldError {
		return nil, errors.New("filing error")
	}
	n := atomic.AddInt32(&m.filed, 1)
	return &model.Complaint{
		ComplaintID:     fmt.Sprintf("CMP-2026-08-24-%06d", n),
		UserSummary:     in.Summary,
		PrimaryCategory: model.CategoryOther,
	}, nil
}

func (m *MockFiler) AnnotationEnabled() bool    { return false }
func (m *MockFiler) AnnotationProvider() string { return "" }

func TestBatchFiler_ProcessInputs(t *testing.T) {
	filer := &MockFiler{}
	batch := NewBatchFiler(filer, 2, 0, 0)

	inputs := []engine.QuickFileInput{
		{Summary: "App crashes on startup"},
		{Summary: "Dark mode please"},
		{Summary: "Export is slow"},
	}

	results := batch.ProcessInputs(context.Background(), inputs)

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	successCount := 0
	for _, res := range results {
		if res.Error == nil {
			successCount++
			if res.Complaint == nil {
				t.Error("expected complaint for successful filing")
			}
		} else {
			t.Errorf("unexpected error for %q: %v", res.Input.Summary, res.Error)
		}
	}

	if successCount != 3 {
		t.Errorf("expected 3 successes, got %d", successCount)
	}
}

func TestBatchFiler_ProcessInputs_Error(t *testing.T) {
	filer := &MockFiler{ShouldError: true}
	batch := NewBatchFiler(filer, 2, 0, 0)

	results := batch.ProcessInputs(context.Background(), []engine.QuickFileInput{
		{Summary: "App crashes on startup"},
	})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Complaint != nil {
		t.Error("expected nil complaint on error")
	}
}

func TestBatchFiler_ProcessInputs_Empty(t *testing.T) {
	filer := &MockFiler{}
	batch := NewBatchFiler(filer, 2, 0, 0)

	results := batch.ProcessInputs(context.Background(), []engine.QuickFileInput{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadInputsFromFile(t *testing.T) {
	content := `- user_summary: App crashes on startup
  user_intent: Open the app
  observed_outcome: It crashes
  expected_outcome: It opens
  frequency: persistent
- user_summary: ""
  user_intent: This entry has no summary
- user_summary: Export is slow
  user_intent: Export my data
  observed_outcome: Takes minutes
  expected_outcome: Takes seconds
`

	tmpfile, err := os.CreateTemp("", "complaints*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	inputs, err := ReadInputsFromFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ReadInputsFromFile failed: %v", err)
	}

	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs after skipping empty summary, got %d", len(inputs))
	}

	if inputs[0].Summary != "App crashes on startup" {
		t.Errorf("unexpected first summary: %q", inputs[0].Summary)
	}
	if inputs[0].Frequency != model.FrequencyPersistent {
		t.Errorf("expected frequency persistent, got %q", inputs[0].Frequency)
	}
	if inputs[1].Summary != "Export is slow" {
		t.Errorf("unexpected second summary: %q", inputs[1].Summary)
	}
}

func TestReadInputsFromFile_NonExistent(t *testing.T) {
	_, err := ReadInputsFromFile("non_existent_file.yaml")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestFileResult_GetError(t *testing.T) {
	r1 := &FileResult{}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("filing failed")
	r2 := &FileResult{Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchFiler_ProcessFile(t *testing.T) {
	content := `- user_summary: App crashes on startup
- user_summary: Dark mode please
- user_summary: Export is slow
`

	tmpfile, err := os.CreateTemp("", "batch_complaints*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	filer := &MockFiler{}
	batch := NewBatchFiler(filer, 2, 0, 0)

	results, err := batch.ProcessFile(context.Background(), tmpfile.Name())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchFiler_ProcessFile_NonExistent(t *testing.T) {
	filer := &MockFiler{}
	batch := NewBatchFiler(filer, 2, 0, 0)

	_, err := batch.ProcessFile(context.Background(), "no_such_file.yaml")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
