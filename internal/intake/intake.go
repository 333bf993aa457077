// Package intake runs the conversational complaint collection flow: ask
// for the narrative fields that are still missing, cap the number of
// clarification rounds, and hand back a record ready for classification.
package intake

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gripe/internal/lifecycle"
	"gripe/internal/model"
)

// State is the intake session state
type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateComplete State = "complete"
)

// placeholder for required fields the reporter never answered
const notProvided = "Not provided"

// fieldIntent etc. key the question tables and the missing-field list
const (
	fieldIntent   = "user_intent"
	fieldObserved = "observed_outcome"
	fieldExpected = "expected_outcome"
)

// requiredFields are collected in this order
var requiredFields = []string{fieldIntent, fieldObserved, fieldExpected}

// questions holds the phrasing variants per field. One is picked at random
// per ask so repeated sessions do not read like a form.
var questions = map[string][]string{
	fieldIntent: {
		"What were you trying to accomplish?",
		"What was your goal?",
		"What were you attempting to do?",
	},
	fieldObserved: {
		"What actually happened?",
		"What went wrong?",
		"What was the result?",
	},
	fieldExpected: {
		"What did you expect to happen?",
		"What should have happened?",
		"What was the intended result?",
	},
	"incident_at": {
		"When did this occur?",
		"What time did this happen?",
		"How recently was this?",
	},
	"frequency": {
		"How often has this happened?",
		"Is this a recurring issue?",
		"How many times have you encountered this?",
	},
	"context": {
		"Can you provide any additional context?",
		"What else should I know?",
		"Are there any other relevant details?",
	},
}

// Session manages one conversational intake
type Session struct {
	complaint *model.Complaint
	rng       *rand.Rand
	sanitize  func(string) string
	maxRounds int
	round     int
	state     State
	missing   []string
	now       func() time.Time
}

// NewSession creates an idle intake session. The random source drives
// question phrasing only and may be nil for a time-seeded one; sanitize is
// applied to every answer before it lands in the record.
func NewSession(maxRounds int, src rand.Source, sanitize func(string) string) *Session {
	if maxRounds <= 0 {
		maxRounds = 3
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if sanitize == nil {
		sanitize = func(s string) string { return s }
	}
	return &Session{
		rng:       rand.New(src),
		sanitize:  sanitize,
		maxRounds: maxRounds,
		state:     StateIdle,
		now:       time.Now,
	}
}

// Start begins intake for a freshly minted record and returns the opening
// response, including the first question when fields are missing.
func (s *Session) Start(c *model.Complaint) string {
	s.state = StateActive
	s.round = 0
	s.complaint = c

	c.AddAudit(lifecycle.ActorSystem, "Complaint intake initiated")

	s.identifyMissing()

	response := "I can help you file that complaint. "
	if len(s.missing) > 0 {
		response += "I'll need to ask you a few quick questions to complete the record.\n\n"
		response += s.nextQuestion()
	} else {
		response += "I have enough information to proceed with filing."
		s.state = StateComplete
	}
	return response
}

func (s *Session) identifyMissing() {
	s.missing = s.missing[:0]
	for _, field := range requiredFields {
		if s.fieldValue(field) == "" {
			s.missing = append(s.missing, field)
		}
	}
}

func (s *Session) fieldValue(field string) string {
	switch field {
	case fieldIntent:
		return s.complaint.UserIntent
	case fieldObserved:
		return s.complaint.ObservedOutcome
	case fieldExpected:
		return s.complaint.ExpectedOutcome
	}
	return ""
}

func (s *Session) setField(field, value string) {
	switch field {
	case fieldIntent:
		s.complaint.UserIntent = value
	case fieldObserved:
		s.complaint.ObservedOutcome = value
	case fieldExpected:
		s.complaint.ExpectedOutcome = value
	}
}

func (s *Session) nextQuestion() string {
	if len(s.missing) == 0 {
		return ""
	}
	return s.ask(s.missing[0])
}

func (s *Session) ask(field string) string {
	qs, ok := questions[field]
	if !ok || len(qs) == 0 {
		return "Can you provide more details?"
	}
	return qs[s.rng.Intn(len(qs))]
}

// ProcessResponse records the answer to the pending question and returns
// the next question or a completion message. After the round cap is hit,
// remaining fields are filled with a placeholder and intake completes.
func (s *Session) ProcessResponse(answer string) string {
	if s.state != StateActive {
		return "No active complaint intake session."
	}

	s.round++
	if s.round > s.maxRounds {
		return s.finalizePartial()
	}

	if len(s.missing) > 0 {
		s.setField(s.missing[0], s.sanitize(answer))
		s.missing = s.missing[1:]
	}

	if len(s.missing) == 0 {
		s.state = StateComplete
		return "\n✓ I have all the information I need.\n\nLet me structure this complaint for you...\n"
	}
	return s.nextQuestion()
}

func (s *Session) finalizePartial() string {
	s.state = StateComplete
	for _, field := range s.missing {
		if s.fieldValue(field) == "" {
			s.setField(field, notProvided)
		}
	}
	s.missing = nil
	return "\nI'll proceed with the information provided.\n"
}

// AskForFrequency returns a frequency question
func (s *Session) AskForFrequency() string { return s.ask("frequency") }

// AskForContext returns a context question
func (s *Session) AskForContext() string { return s.ask("context") }

// AskForIncidentTime returns an incident-time question
func (s *Session) AskForIncidentTime() string { return s.ask("incident_at") }

// SetFrequency records the frequency; unknown values are rejected
func (s *Session) SetFrequency(freq model.Frequency) bool {
	if !freq.Valid() {
		return false
	}
	s.complaint.Frequency = freq
	return true
}

// SetContext records additional context
func (s *Session) SetContext(context string) {
	s.complaint.Context = s.sanitize(context)
}

// SetIncidentTime parses the reporter's answer as a timestamp. Relative
// answers resolve to today or yesterday; anything else is preserved in the
// context field rather than dropped.
func (s *Session) SetIncidentTime(raw string) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			s.complaint.IncidentAt = &t
			return
		}
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "today"):
		t := s.now()
		s.complaint.IncidentAt = &t
	case strings.Contains(lower, "yesterday"):
		t := s.now().AddDate(0, 0, -1)
		s.complaint.IncidentAt = &t
	default:
		if s.complaint.Context != "" {
			s.complaint.Context += " Time: " + raw
		} else {
			s.complaint.Context = "Time: " + raw
		}
	}
}

// AddEvidence attaches an evidence item to the record
func (s *Session) AddEvidence(evidenceType, content string) {
	s.complaint.Evidence = append(s.complaint.Evidence, model.EvidenceItem{
		Type:    evidenceType,
		Content: content,
	})
}

// Complaint returns the record under collection
func (s *Session) Complaint() *model.Complaint {
	return s.complaint
}

// IsComplete reports whether intake finished
func (s *Session) IsComplete() bool {
	return s.state == StateComplete
}

// Reset returns the session to idle, dropping the record in progress
func (s *Session) Reset() {
	s.state = StateIdle
	s.round = 0
	s.complaint = nil
	s.missing = nil
}

// Summary renders the collected fields for confirmation before filing
func (s *Session) Summary() string {
	var b strings.Builder
	b.WriteString("=== Complaint Summary ===\n\n")

	c := s.complaint
	if c == nil {
		return b.String()
	}
	if c.UserIntent != "" {
		fmt.Fprintf(&b, "Intent: %s\n", c.UserIntent)
	}
	if c.ObservedOutcome != "" {
		fmt.Fprintf(&b, "Observed: %s\n", c.ObservedOutcome)
	}
	if c.ExpectedOutcome != "" {
		fmt.Fprintf(&b, "Expected: %s\n", c.ExpectedOutcome)
	}
	if c.Frequency != model.FrequencyUnknown {
		fmt.Fprintf(&b, "Frequency: %s\n", c.Frequency)
	}
	if c.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", c.Context)
	}
	return b.String()
}
