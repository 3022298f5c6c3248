package memory

import (
	"context"
	"sync"

	audit "regdesk/pkg/platform/audit"
)

// Publisher records events in memory. Used by tests and the demo store mode.
type Publisher struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *Publisher) Events() []audit.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]audit.Event{}, p.events...)
}

// Actions returns the emitted actions in emission order.
func (p *Publisher) Actions() []audit.AuditEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]audit.AuditEvent, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

func (p *Publisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
