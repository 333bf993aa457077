package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"gripe/internal/lifecycle"
	"gripe/internal/model"
	"gripe/internal/rules"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(
		model.StorageConfig{Dir: t.TempDir()},
		model.CacheConfig{Enabled: true, TTL: time.Minute},
		lifecycle.NewMachine(rules.Default()),
	)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	return s
}

func testComplaint(id string) *model.Complaint {
	c := &model.Complaint{
		ComplaintID:         id,
		ReportedAt:          time.Now(),
		Status:              model.StatusRouted,
		UserSummary:         "Editor replaced my text",
		UserIntent:          "Append a closing paragraph",
		ObservedOutcome:     "Everything was replaced instead",
		ExpectedOutcome:     "The paragraph is appended",
		Frequency:           model.FrequencyOnce,
		PrimaryCategory:     model.CategoryModelBehavior,
		SecondaryCategories: []model.Category{},
		Severity:            model.SeverityMedium,
		SeverityBasis:       []string{"Recurring issue (persistent)"},
		ProbableRootCauses:  []string{"constraint_parsing_failure"},
		RoutingTarget:       model.RouteSelfCorrection,
		SuggestedFix:        "Add explicit constraint verification step",
		Confidence:          0.85,
	}
	c.AddAudit(lifecycle.ActorSystem, "Complaint triaged")
	c.AddAudit(lifecycle.ActorSystem, "Complaint structured and classified")
	return c
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	c := testComplaint("CMP-2026-08-24-AB12CD")
	if err := s.Save(c); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	loaded, err := s.Load(c.ComplaintID)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}

	if loaded.ComplaintID != c.ComplaintID ||
		loaded.PrimaryCategory != c.PrimaryCategory ||
		loaded.Severity != c.Severity ||
		loaded.RoutingTarget != c.RoutingTarget ||
		loaded.Confidence != c.Confidence ||
		loaded.UserIntent != c.UserIntent {
		t.Error("Expected loaded record to equal saved record")
	}
	if !loaded.ReportedAt.Equal(c.ReportedAt) {
		t.Errorf("Expected reported_at to round-trip, got %v vs %v", loaded.ReportedAt, c.ReportedAt)
	}
	if !reflect.DeepEqual(loaded.ProbableRootCauses, c.ProbableRootCauses) {
		t.Errorf("Expected root causes to round-trip, got %v", loaded.ProbableRootCauses)
	}

	if len(loaded.AuditTrail) != len(c.AuditTrail) {
		t.Fatalf("Expected %d audit entries, got %d", len(c.AuditTrail), len(loaded.AuditTrail))
	}
	for i := range loaded.AuditTrail {
		if loaded.AuditTrail[i].Action != c.AuditTrail[i].Action {
			t.Errorf("Expected audit order to round-trip, entry %d is %q", i, loaded.AuditTrail[i].Action)
		}
	}
}

func TestSave_ShardsByYearMonth(t *testing.T) {
	s := newTestStore(t)

	c := testComplaint("CMP-2026-08-24-AB12CD")
	if err := s.Save(c); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	path := filepath.Join(s.complaintsDir, "2026", "08", "CMP-2026-08-24-AB12CD.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected document at %s: %v", path, err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("CMP-2026-08-24-ZZZZZZ")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSave_RefusesInvalidRecord(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name   string
		mutate func(*model.Complaint)
	}{
		{"malformed id", func(c *model.Complaint) { c.ComplaintID = "TICKET-1" }},
		{"missing reported_at", func(c *model.Complaint) { c.ReportedAt = time.Time{} }},
		{"unknown status", func(c *model.Complaint) { c.Status = "archived" }},
		{"unclassified category", func(c *model.Complaint) { c.PrimaryCategory = "" }},
		{"unknown severity", func(c *model.Complaint) { c.Severity = "fatal" }},
		{"missing intent", func(c *model.Complaint) { c.UserIntent = "" }},
		{"missing observed outcome", func(c *model.Complaint) { c.ObservedOutcome = "" }},
		{"missing expected outcome", func(c *model.Complaint) { c.ExpectedOutcome = "" }},
		{"confidence out of range", func(c *model.Complaint) { c.Confidence = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testComplaint("CMP-2026-08-24-AB12CD")
			tt.mutate(c)

			err := s.Save(c)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
		})
	}

	// Nothing was persisted and the indices stayed empty
	if got := s.Stats().TotalComplaints; got != 0 {
		t.Errorf("Expected no records after refused saves, got %d", got)
	}
}

func TestSave_IndexAppendIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	c := testComplaint("CMP-2026-08-24-AB12CD")
	for i := 0; i < 3; i++ {
		if err := s.Save(c); err != nil {
			t.Fatalf("Expected save %d to succeed, got %v", i, err)
		}
	}

	stats := s.Stats()
	if stats.TotalComplaints != 1 {
		t.Errorf("Expected one distinct record, got %d", stats.TotalComplaints)
	}
	if stats.ByCategory["model_behavior"] != 1 {
		t.Errorf("Expected category bucket of 1, got %d", stats.ByCategory["model_behavior"])
	}
}

func TestUpdateStatus_MovesIndexBucket(t *testing.T) {
	s := newTestStore(t)

	c := testComplaint("CMP-2026-08-24-AB12CD")
	if err := s.Save(c); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	updated, err := s.UpdateStatus(c.ComplaintID, model.StatusInProgress, lifecycle.ActorUser)
	if err != nil {
		t.Fatalf("Expected routed -> in_progress to succeed, got %v", err)
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("Expected in_progress, got %s", updated.Status)
	}

	stats := s.Stats()
	if stats.ByStatus["routed"] != 0 {
		t.Errorf("Expected old bucket emptied, got %d", stats.ByStatus["routed"])
	}
	if stats.ByStatus["in_progress"] != 1 {
		t.Errorf("Expected new bucket populated, got %d", stats.ByStatus["in_progress"])
	}

	// The persisted record carries the transition audit entry
	loaded, err := s.Load(c.ComplaintID)
	if err != nil {
		t.Fatalf("Expected reload to succeed, got %v", err)
	}
	last := loaded.AuditTrail[len(loaded.AuditTrail)-1]
	if last.Action != "Status changed: routed -> in_progress" {
		t.Errorf("Unexpected audit action %q", last.Action)
	}
}

func TestUpdateStatus_RejectionLeavesEverythingUnchanged(t *testing.T) {
	s := newTestStore(t)

	c := testComplaint("CMP-2026-08-24-AB12CD")
	if err := s.Save(c); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	_, err := s.UpdateStatus(c.ComplaintID, model.StatusClosed, lifecycle.ActorUser)
	var ite *lifecycle.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("Expected InvalidTransitionError, got %v", err)
	}

	loaded, err := s.Load(c.ComplaintID)
	if err != nil {
		t.Fatalf("Expected reload to succeed, got %v", err)
	}
	if loaded.Status != model.StatusRouted {
		t.Errorf("Expected status unchanged, got %s", loaded.Status)
	}
	if s.Stats().ByStatus["routed"] != 1 {
		t.Error("Expected status index unchanged after rejection")
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateStatus("CMP-2026-08-24-ZZZZZZ", model.StatusInProgress, lifecycle.ActorUser)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSearch_ResolvesBucketsInOrder(t *testing.T) {
	s := newTestStore(t)

	first := testComplaint("CMP-2026-08-24-AAAAAA")
	second := testComplaint("CMP-2026-08-24-BBBBBB")
	third := testComplaint("CMP-2026-08-24-CCCCCC")
	third.PrimaryCategory = model.CategoryBug

	for _, c := range []*model.Complaint{first, second, third} {
		if err := s.Save(c); err != nil {
			t.Fatalf("Expected save to succeed, got %v", err)
		}
	}

	got := s.SearchByCategory(model.CategoryModelBehavior)
	if len(got) != 2 {
		t.Fatalf("Expected 2 model_behavior records, got %d", len(got))
	}
	if got[0].ComplaintID != first.ComplaintID || got[1].ComplaintID != second.ComplaintID {
		t.Error("Expected records in index bucket order")
	}

	if got := s.SearchBySeverity(model.SeverityMedium); len(got) != 3 {
		t.Errorf("Expected 3 medium records, got %d", len(got))
	}
	if got := s.SearchByStatus(model.StatusRouted); len(got) != 3 {
		t.Errorf("Expected 3 routed records, got %d", len(got))
	}
}

func TestStore_IndicesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	machine := lifecycle.NewMachine(rules.Default())

	s, err := New(model.StorageConfig{Dir: dir}, model.CacheConfig{}, machine)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	if err := s.Save(testComplaint("CMP-2026-08-24-AB12CD")); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	reopened, err := New(model.StorageConfig{Dir: dir}, model.CacheConfig{}, machine)
	if err != nil {
		t.Fatalf("Expected reopen to succeed, got %v", err)
	}

	stats := reopened.Stats()
	if stats.TotalComplaints != 1 {
		t.Errorf("Expected persisted indices after reopen, got total %d", stats.TotalComplaints)
	}
	if _, err := reopened.Load("CMP-2026-08-24-AB12CD"); err != nil {
		t.Errorf("Expected record load after reopen, got %v", err)
	}
}
