// Package lifecycle implements the complaint status state machine. A
// transition is accepted when the target equals the current state (a no-op,
// idempotent) or is a declared outgoing edge; anything else is rejected and
// the record is left unchanged.
package lifecycle

import (
	"fmt"

	"gripe/internal/model"
	"gripe/internal/rules"
)

// Actors stamped onto audit entries
const (
	ActorSystem = "system"
	ActorUser   = "user"
	ActorAPI    = "api"
)

// InvalidTransitionError reports a rejected status change
type InvalidTransitionError struct {
	From model.Status
	To   model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Machine validates and applies status transitions
type Machine struct {
	transitions map[model.Status][]model.Status
}

// NewMachine creates a machine over the rule set's transition graph
func NewMachine(r *rules.Rules) *Machine {
	return &Machine{transitions: r.Transitions}
}

// CanTransition reports whether moving from one status to another is allowed
func (m *Machine) CanTransition(from, to model.Status) bool {
	if from == to {
		return true
	}
	for _, next := range m.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Outgoing returns the declared outgoing edges for a status
func (m *Machine) Outgoing(from model.Status) []model.Status {
	return m.transitions[from]
}

// Apply moves the complaint to the new status and appends one audit entry
// recording the change. The complaint is left untouched when the transition
// is rejected. Accepted no-op transitions still append an entry.
func (m *Machine) Apply(c *model.Complaint, to model.Status, actor string) error {
	if !to.Valid() {
		return &InvalidTransitionError{From: c.Status, To: to}
	}
	if !m.CanTransition(c.Status, to) {
		return &InvalidTransitionError{From: c.Status, To: to}
	}

	from := c.Status
	c.Status = to
	c.AddAudit(actor, fmt.Sprintf("Status changed: %s -> %s", from, to))
	return nil
}
