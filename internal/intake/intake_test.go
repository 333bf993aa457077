package intake

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"gripe/internal/model"
	"gripe/internal/util"
)

func newComplaint(summary string) *model.Complaint {
	return &model.Complaint{
		ComplaintID: "CMP-2026-08-24-TEST01",
		ReportedAt:  time.Now(),
		Status:      model.StatusNew,
		UserSummary: summary,
		Frequency:   model.FrequencyUnknown,
	}
}

func newSession() *Session {
	sanitize := func(s string) string { return util.Sanitize(s, util.DefaultMaxFieldLength) }
	return NewSession(3, rand.NewSource(42), sanitize)
}

func TestSession_FullFlow(t *testing.T) {
	s := newSession()
	c := newComplaint("The editor keeps replacing my text")

	resp := s.Start(c)
	if !strings.Contains(resp, "I can help you file that complaint.") {
		t.Errorf("unexpected opening: %q", resp)
	}
	if !strings.Contains(resp, "?") {
		t.Error("expected opening to include the first question")
	}
	if s.IsComplete() {
		t.Error("session should not be complete with missing fields")
	}

	if len(c.AuditTrail) != 1 || c.AuditTrail[0].Action != "Complaint intake initiated" {
		t.Errorf("expected intake audit entry, got %+v", c.AuditTrail)
	}

	// Three answers fill intent, observed, expected in order
	next := s.ProcessResponse("Append a paragraph to my notes")
	if next == "" || !strings.Contains(next, "?") {
		t.Errorf("expected a second question, got %q", next)
	}
	next = s.ProcessResponse("The whole document was replaced")
	if next == "" || !strings.Contains(next, "?") {
		t.Errorf("expected a third question, got %q", next)
	}
	done := s.ProcessResponse("The paragraph appended at the end")
	if !strings.Contains(done, "I have all the information I need") {
		t.Errorf("expected completion message, got %q", done)
	}

	if !s.IsComplete() {
		t.Error("session should be complete")
	}
	if c.UserIntent != "Append a paragraph to my notes" {
		t.Errorf("unexpected intent: %q", c.UserIntent)
	}
	if c.ObservedOutcome != "The whole document was replaced" {
		t.Errorf("unexpected observed: %q", c.ObservedOutcome)
	}
	if c.ExpectedOutcome != "The paragraph appended at the end" {
		t.Errorf("unexpected expected: %q", c.ExpectedOutcome)
	}
}

func TestSession_AnswersAreSanitized(t *testing.T) {
	s := newSession()
	s.Start(newComplaint("summary"))

	s.ProcessResponse("  too   much    whitespace  ")
	if got := s.Complaint().UserIntent; got != "too much whitespace" {
		t.Errorf("expected sanitized answer, got %q", got)
	}
}

func TestSession_RoundCapFillsPlaceholders(t *testing.T) {
	// One round allowed: the first answer lands, the second trips the cap
	sanitize := func(s string) string { return s }
	s := NewSession(1, rand.NewSource(1), sanitize)
	c := newComplaint("summary")
	s.Start(c)

	s.ProcessResponse("My goal")
	resp := s.ProcessResponse("This answer arrives too late")

	if !strings.Contains(resp, "I'll proceed with the information provided") {
		t.Errorf("expected partial finalization message, got %q", resp)
	}
	if !s.IsComplete() {
		t.Error("session should be complete after round cap")
	}
	if c.UserIntent != "My goal" {
		t.Errorf("first answer should be kept, got %q", c.UserIntent)
	}
	if c.ObservedOutcome != "Not provided" {
		t.Errorf("expected placeholder for observed, got %q", c.ObservedOutcome)
	}
	if c.ExpectedOutcome != "Not provided" {
		t.Errorf("expected placeholder for expected, got %q", c.ExpectedOutcome)
	}
}

func TestSession_PrefilledFieldsSkipQuestions(t *testing.T) {
	s := newSession()
	c := newComplaint("summary")
	c.UserIntent = "Already known"
	c.ObservedOutcome = "Already known"
	c.ExpectedOutcome = "Already known"

	resp := s.Start(c)
	if !strings.Contains(resp, "I have enough information to proceed") {
		t.Errorf("expected immediate completion, got %q", resp)
	}
	if !s.IsComplete() {
		t.Error("session should be complete")
	}
}

func TestSession_InactiveResponse(t *testing.T) {
	s := newSession()
	if got := s.ProcessResponse("hello"); got != "No active complaint intake session." {
		t.Errorf("unexpected response for idle session: %q", got)
	}
}

func TestSession_SetFrequency(t *testing.T) {
	s := newSession()
	c := newComplaint("summary")
	s.Start(c)

	if !s.SetFrequency(model.FrequencyPersistent) {
		t.Error("expected persistent to be accepted")
	}
	if c.Frequency != model.FrequencyPersistent {
		t.Errorf("frequency not set, got %q", c.Frequency)
	}
	if s.SetFrequency(model.Frequency("hourly")) {
		t.Error("expected invalid frequency to be rejected")
	}
}

func TestSession_SetIncidentTime(t *testing.T) {
	s := newSession()
	c := newComplaint("summary")
	s.Start(c)
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.SetIncidentTime("2026-08-20T09:30:00Z")
	if c.IncidentAt == nil || !c.IncidentAt.Equal(time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("expected parsed timestamp, got %v", c.IncidentAt)
	}

	s.SetIncidentTime("it was yesterday evening")
	if c.IncidentAt == nil || !c.IncidentAt.Equal(fixed.AddDate(0, 0, -1)) {
		t.Errorf("expected yesterday, got %v", c.IncidentAt)
	}

	s.SetIncidentTime("sometime last spring")
	if c.Context != "Time: sometime last spring" {
		t.Errorf("unparseable time should land in context, got %q", c.Context)
	}

	// A second unparseable answer appends rather than overwrites
	s.SetIncidentTime("around noon")
	if c.Context != "Time: sometime last spring Time: around noon" {
		t.Errorf("expected appended context, got %q", c.Context)
	}
}

func TestSession_EvidenceAndSummary(t *testing.T) {
	s := newSession()
	c := newComplaint("summary")
	s.Start(c)

	s.ProcessResponse("Export my data")
	s.ProcessResponse("The export hung")
	s.ProcessResponse("A file downloads")
	s.SetFrequency(model.FrequencyIntermittent)
	s.SetContext("Large workspace, slow network")
	s.AddEvidence("screenshot", "export-stuck.png")

	if len(c.Evidence) != 1 || c.Evidence[0].Type != "screenshot" {
		t.Errorf("unexpected evidence: %+v", c.Evidence)
	}

	summary := s.Summary()
	for _, want := range []string{
		"Intent: Export my data",
		"Observed: The export hung",
		"Expected: A file downloads",
		"Frequency: intermittent",
		"Context: Large workspace, slow network",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestSession_SummaryOmitsUnknownFrequency(t *testing.T) {
	s := newSession()
	s.Start(newComplaint("summary"))

	if strings.Contains(s.Summary(), "Frequency:") {
		t.Error("unknown frequency should be omitted from the summary")
	}
}

func TestSession_Reset(t *testing.T) {
	s := newSession()
	s.Start(newComplaint("summary"))
	s.Reset()

	if s.IsComplete() {
		t.Error("reset session should not be complete")
	}
	if s.Complaint() != nil {
		t.Error("reset should drop the record")
	}
	if got := s.ProcessResponse("answer"); got != "No active complaint intake session." {
		t.Errorf("reset session should be inactive, got %q", got)
	}
}

func TestSession_DeterministicPhrasing(t *testing.T) {
	sanitize := func(s string) string { return s }
	a := NewSession(3, rand.NewSource(7), sanitize)
	b := NewSession(3, rand.NewSource(7), sanitize)

	ra := a.Start(newComplaint("summary"))
	rb := b.Start(newComplaint("summary"))
	if ra != rb {
		t.Errorf("same seed should produce same phrasing:\n%q\n%q", ra, rb)
	}
}
