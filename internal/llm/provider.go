// Package llm generates optional triage notes for classified complaints.
//
// The note is an annotation for human triagers. It is produced after
// classification completes and is never read by the classifier, router, or
// clusterer; classification stays fully deterministic with or without it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"gripe/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Annotate generates a triage note for a classified complaint
	Annotate(ctx context.Context, req NoteRequest) (*NoteResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// NoteRequest contains the input for triage-note generation
type NoteRequest struct {
	// Complaint is the fully classified record to annotate
	Complaint *model.Complaint

	// Prompt is an optional custom prompt (if empty, use the default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// NoteResponse contains the generated note
type NoteResponse struct {
	Note       string
	Model      string
	TokensUsed int
}

// BuildPrompt constructs the default annotation prompt. The prompt confines
// the model to restating the deterministic classification, not second-
// guessing it.
func BuildPrompt(c *model.Complaint) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are writing a short triage note for an already-classified complaint.

RULES:
1. The classification below is final. Do not propose a different category,
   severity, or routing target.
2. Summarize what the reporter experienced and why the routing makes sense,
   in at most three sentences.
3. Do not invent details that are not in the record.

Complaint %s
- Category: %s
- Severity: %s (basis: %s)
- Probable root causes: %s
- Routed to: %s

Reporter's summary: %s
Intent: %s
Observed: %s
Expected: %s
`,
		c.ComplaintID,
		c.PrimaryCategory,
		c.Severity, strings.Join(c.SeverityBasis, "; "),
		strings.Join(c.ProbableRootCauses, ", "),
		c.RoutingTarget,
		c.UserSummary,
		c.UserIntent,
		c.ObservedOutcome,
		c.ExpectedOutcome,
	)

	if c.Context != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", c.Context)
	}

	return b.String()
}
