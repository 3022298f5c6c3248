// Package logpub emits audit events to the structured logger. It is the default
// sink when no event stream is configured.
package logpub

import (
	"context"
	"log/slog"
	"time"

	audit "regdesk/pkg/platform/audit"
)

// Publisher writes each event as one structured log line.
type Publisher struct {
	logger *slog.Logger
}

// New creates a log-backed publisher.
func New(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Emit never fails.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	p.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"category", event.Category,
		"participant_id", event.ParticipantID,
		"team_ordinal", event.TeamOrdinal,
		"subject", event.Subject,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"timestamp", event.Timestamp,
	)
	return nil
}
