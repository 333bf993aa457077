package lifecycle

import (
	"errors"
	"testing"

	"gripe/internal/model"
	"gripe/internal/rules"
)

func newTestMachine() *Machine {
	return NewMachine(rules.Default())
}

func TestApply_DeclaredEdge(t *testing.T) {
	m := newTestMachine()

	c := &model.Complaint{Status: model.StatusNew}
	if err := m.Apply(c, model.StatusTriaged, ActorSystem); err != nil {
		t.Fatalf("Expected transition to succeed, got %v", err)
	}

	if c.Status != model.StatusTriaged {
		t.Errorf("Expected triaged, got %s", c.Status)
	}
	if len(c.AuditTrail) != 1 {
		t.Fatalf("Expected one audit entry, got %d", len(c.AuditTrail))
	}
	if c.AuditTrail[0].Actor != ActorSystem {
		t.Errorf("Expected system actor, got %s", c.AuditTrail[0].Actor)
	}
	if c.AuditTrail[0].Action != "Status changed: new -> triaged" {
		t.Errorf("Unexpected audit action %q", c.AuditTrail[0].Action)
	}
}

func TestApply_RejectsUndeclaredEdge(t *testing.T) {
	m := newTestMachine()

	c := &model.Complaint{Status: model.StatusNew}
	err := m.Apply(c, model.StatusResolved, ActorUser)
	if err == nil {
		t.Fatal("Expected rejection for new -> resolved")
	}

	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("Expected InvalidTransitionError, got %T", err)
	}
	if c.Status != model.StatusNew {
		t.Errorf("Expected record unchanged, got status %s", c.Status)
	}
	if len(c.AuditTrail) != 0 {
		t.Errorf("Expected no audit entry on rejection, got %d", len(c.AuditTrail))
	}
}

func TestApply_NoOpIsAcceptedAndAudited(t *testing.T) {
	m := newTestMachine()

	c := &model.Complaint{Status: model.StatusTriaged}
	if err := m.Apply(c, model.StatusTriaged, ActorSystem); err != nil {
		t.Fatalf("Expected idempotent no-op to succeed, got %v", err)
	}
	if len(c.AuditTrail) != 1 {
		t.Errorf("Expected accepted no-op to append an audit entry, got %d", len(c.AuditTrail))
	}
}

func TestApply_RejectsUnknownStatus(t *testing.T) {
	m := newTestMachine()

	c := &model.Complaint{Status: model.StatusNew}
	if err := m.Apply(c, model.Status("archived"), ActorSystem); err == nil {
		t.Error("Expected rejection for status outside the graph")
	}
}

func TestGraph_EveryStateReachesTriaged(t *testing.T) {
	m := newTestMachine()

	// closed -> reopened -> triaged guarantees a path back for every node.
	for _, start := range model.Statuses() {
		visited := map[model.Status]bool{start: true}
		queue := []model.Status{start}
		found := start == model.StatusTriaged

		for len(queue) > 0 && !found {
			current := queue[0]
			queue = queue[1:]
			for _, next := range m.Outgoing(current) {
				if next == model.StatusTriaged {
					found = true
					break
				}
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}

		if !found {
			t.Errorf("Expected a path from %s back to triaged", start)
		}
	}
}

func TestGraph_FullHappyPath(t *testing.T) {
	m := newTestMachine()

	c := &model.Complaint{Status: model.StatusNew}
	path := []model.Status{
		model.StatusTriaged, model.StatusStructured, model.StatusClustered,
		model.StatusRouted, model.StatusInProgress, model.StatusAwaitingUser,
		model.StatusInProgress, model.StatusResolved, model.StatusClosed,
		model.StatusReopened, model.StatusTriaged,
	}

	for _, next := range path {
		if err := m.Apply(c, next, ActorSystem); err != nil {
			t.Fatalf("Expected %s -> %s to succeed: %v", c.Status, next, err)
		}
	}

	if len(c.AuditTrail) != len(path) {
		t.Errorf("Expected %d audit entries, got %d", len(path), len(c.AuditTrail))
	}
	for i := 1; i < len(c.AuditTrail); i++ {
		if c.AuditTrail[i].Timestamp.Before(c.AuditTrail[i-1].Timestamp) {
			t.Error("Expected audit timestamps to be non-decreasing")
		}
	}
}
