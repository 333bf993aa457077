// Package engine wires the classifier, clusterer, lifecycle machine, and
// indexed store into the complaint processing pipeline: a completed record
// is triaged, classified, clustered against its category, routed, and
// persisted, with an audit entry for every step.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gripe/internal/classify"
	"gripe/internal/cluster"
	"gripe/internal/lifecycle"
	"gripe/internal/llm"
	"gripe/internal/model"
	"gripe/internal/rules"
	"gripe/internal/store"
	"gripe/internal/util"
)

// Engine is the complaint processing pipeline
type Engine struct {
	rules      *rules.Rules
	classifier *classify.Classifier
	clusterer  *cluster.Clusterer
	machine    *lifecycle.Machine
	store      *store.Store
	ids        *util.IDGenerator
	annotator  *llm.Annotator // nil when disabled

	maxFieldLength int
	verbose        bool
}

// New builds an engine from configuration and rule tables. The random
// source feeds ID generation and may be nil for a time-seeded one.
func New(cfg *model.Config, r *rules.Rules, src rand.Source) (*Engine, error) {
	machine := lifecycle.NewMachine(r)

	st, err := store.New(cfg.Storage, cfg.Cache, machine)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var annotator *llm.Annotator
	if cfg.LLM.Provider != "" {
		a, err := llm.NewAnnotator(cfg.LLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			annotator = a
		}
	}

	return &Engine{
		rules:          r,
		classifier:     classify.NewClassifier(r),
		clusterer:      cluster.NewClusterer(r),
		machine:        machine,
		store:          st,
		ids:            util.NewIDGenerator(src),
		annotator:      annotator,
		maxFieldLength: cfg.Intake.MaxFieldLength,
		verbose:        cfg.Output.Verbose,
	}, nil
}

// Rules returns the injected rule tables (shared, read-only)
func (e *Engine) Rules() *rules.Rules { return e.rules }

// Machine returns the lifecycle state machine
func (e *Engine) Machine() *lifecycle.Machine { return e.machine }

// AnnotationEnabled reports whether an LLM annotator is configured
func (e *Engine) AnnotationEnabled() bool { return e.annotator != nil }

// AnnotationProvider names the configured LLM provider, or ""
func (e *Engine) AnnotationProvider() string {
	if e.annotator == nil {
		return ""
	}
	return e.annotator.Provider()
}

// NewComplaint mints an empty record: fresh ID, creation timestamp, status
// new, frequency unknown.
func (e *Engine) NewComplaint(summary string) *model.Complaint {
	return &model.Complaint{
		ComplaintID:         e.ids.Generate(),
		ReportedAt:          time.Now(),
		Status:              model.StatusNew,
		UserSummary:         util.Sanitize(summary, e.maxFieldLength),
		Frequency:           model.FrequencyUnknown,
		SecondaryCategories: []model.Category{},
		SeverityBasis:       []string{},
		ProbableRootCauses:  []string{},
		RelatedComplaints:   []string{},
		Evidence:            []model.EvidenceItem{},
		AuditTrail:          []model.AuditEntry{},
	}
}

// Sanitize normalizes a narrative field with the configured length cap
func (e *Engine) Sanitize(text string) string {
	return util.Sanitize(text, e.maxFieldLength)
}

// Process runs a completed record through the full pipeline:
// new -> triaged -> classify -> structured -> cluster -> clustered ->
// routed -> persist. The record is mutated in place and saved.
func (e *Engine) Process(ctx context.Context, c *model.Complaint) error {
	if err := e.machine.Apply(c, model.StatusTriaged, lifecycle.ActorSystem); err != nil {
		return err
	}

	e.classifier.Classify(c)

	if err := e.machine.Apply(c, model.StatusStructured, lifecycle.ActorSystem); err != nil {
		return err
	}
	c.AddAudit(lifecycle.ActorSystem, "Complaint structured and classified")

	// Similarity runs against records existing now; the relation is
	// one-directional by design.
	pool := e.store.SearchByCategory(c.PrimaryCategory)
	similar := e.clusterer.Similar(c, pool)
	if len(similar) > 0 {
		c.RelatedComplaints = similar
	}

	if err := e.machine.Apply(c, model.StatusClustered, lifecycle.ActorSystem); err != nil {
		return err
	}
	c.AddAudit(lifecycle.ActorSystem, fmt.Sprintf("Clustered with %d similar complaints", len(similar)))

	if err := e.machine.Apply(c, model.StatusRouted, lifecycle.ActorSystem); err != nil {
		return err
	}
	c.AddAudit(lifecycle.ActorSystem, fmt.Sprintf("Routed to %s", c.RoutingTarget))

	// Optional annotation, generated after classification so it can never
	// influence it. Failures degrade to an unannotated record.
	if e.annotator != nil {
		note, err := e.annotator.Annotate(ctx, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: triage note generation failed: %v\n", err)
		} else if note != nil {
			c.TriageNote = note
		}
	}

	if err := e.store.Save(c); err != nil {
		return fmt.Errorf("persist complaint: %w", err)
	}
	return nil
}

// QuickFileInput carries all fields for non-conversational filing
type QuickFileInput struct {
	Summary   string          `json:"user_summary" yaml:"user_summary"`
	Intent    string          `json:"user_intent" yaml:"user_intent"`
	Observed  string          `json:"observed_outcome" yaml:"observed_outcome"`
	Expected  string          `json:"expected_outcome" yaml:"expected_outcome"`
	Frequency model.Frequency `json:"frequency,omitempty" yaml:"frequency"`
	Context   string          `json:"context,omitempty" yaml:"context"`
}

// QuickFile files a complaint from a complete input in one shot (the
// API/batch path) and runs it through the full pipeline.
func (e *Engine) QuickFile(ctx context.Context, in QuickFileInput) (*model.Complaint, error) {
	c := e.NewComplaint(in.Summary)
	c.UserIntent = e.Sanitize(in.Intent)
	c.ObservedOutcome = e.Sanitize(in.Observed)
	c.ExpectedOutcome = e.Sanitize(in.Expected)
	c.Context = e.Sanitize(in.Context)
	if in.Frequency.Valid() {
		c.Frequency = in.Frequency
	}
	c.AddAudit(lifecycle.ActorAPI, "Quick complaint filed")

	if err := e.Process(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get retrieves a complaint by ID
func (e *Engine) Get(id string) (*model.Complaint, error) {
	return e.store.Load(id)
}

// ListByCategory lists stored complaints in a category
func (e *Engine) ListByCategory(cat model.Category) []*model.Complaint {
	return e.store.SearchByCategory(cat)
}

// ListBySeverity lists stored complaints at a severity
func (e *Engine) ListBySeverity(sev model.Severity) []*model.Complaint {
	return e.store.SearchBySeverity(sev)
}

// ListByStatus lists stored complaints in a lifecycle state
func (e *Engine) ListByStatus(status model.Status) []*model.Complaint {
	return e.store.SearchByStatus(status)
}

// Stats reports storage statistics
func (e *Engine) Stats() store.Statistics {
	return e.store.Stats()
}

// UpdateStatus applies an externally requested status change (actor "user")
func (e *Engine) UpdateStatus(id string, newStatus model.Status) (*model.Complaint, error) {
	return e.store.UpdateStatus(id, newStatus, lifecycle.ActorUser)
}

// Resolve marks the complaint resolved, recording the resolution text when
// given
func (e *Engine) Resolve(id, resolution string) (*model.Complaint, error) {
	c, err := e.store.UpdateStatus(id, model.StatusResolved, lifecycle.ActorSystem)
	if err != nil {
		return nil, err
	}
	if resolution != "" {
		c.AddAudit(lifecycle.ActorSystem, "Resolved: "+resolution)
		if err := e.store.Save(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Close closes a resolved complaint
func (e *Engine) Close(id string) (*model.Complaint, error) {
	return e.store.UpdateStatus(id, model.StatusClosed, lifecycle.ActorUser)
}

// Reopen reopens a closed complaint, recording the reason when given.
// Reopening is a status transition; records are never deleted.
func (e *Engine) Reopen(id, reason string) (*model.Complaint, error) {
	c, err := e.store.UpdateStatus(id, model.StatusReopened, lifecycle.ActorUser)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		c.AddAudit(lifecycle.ActorUser, "Reopened: "+reason)
		if err := e.store.Save(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
