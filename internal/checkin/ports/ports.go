// Package ports defines the collaborator interfaces of the check-in module.
// Adapters under store/, render/, printer/ and lock/ implement them.
package ports

import (
	"context"
	"log/slog"
	"time"

	"regdesk/internal/checkin/models"
	"regdesk/pkg/platform/audit"
	"regdesk/pkg/requestcontext"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks RecordStore,Renderer,Printer,Locker,AuditPublisher

// RecordStore is the remote tabular store holding participant and team rows.
// It offers no compare-and-set: every check-in decision is read-then-write.
type RecordStore interface {
	// SearchParticipants returns up to limit rows matching any populated field of q.
	SearchParticipants(ctx context.Context, q models.Query, limit int) ([]models.Participant, error)

	// SetParticipantCheckIn writes the check-in timestamp of one participant row.
	SetParticipantCheckIn(ctx context.Context, recordID string, at time.Time) error

	// FindTeam returns the team row for an ordinal, or sentinel.ErrNotFound.
	FindTeam(ctx context.Context, ordinal int) (*models.Team, error)

	// SetTeamCheckIn writes the asset-issuance timestamp of one team row.
	SetTeamCheckIn(ctx context.Context, recordID string, at time.Time) error
}

// Renderer turns a template and a JSON payload into a document at outputPath.
type Renderer interface {
	Render(ctx context.Context, template, outputPath string, payload []byte) error
}

// Printer dispatches a rendered document to a physical printer.
type Printer interface {
	Print(ctx context.Context, path string) error
}

// Locker serialises check-ins for the same key across processes.
type Locker interface {
	// Acquire returns a release func, or sentinel.ErrConflict when the key is held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// AuditPublisher emits check-in facts.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// EmitTimeout bounds one publish from LogAudit. Check-in branches run on a
// context that is never cancelled.
const EmitTimeout = 5 * time.Second

// LogAudit logs an audit event and forwards it to the publisher if one is set.
// Publish failures are logged and never returned.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}

	if logger != nil {
		logger.DebugContext(ctx, string(event.Action),
			"participant_id", event.ParticipantID,
			"team_ordinal", event.TeamOrdinal,
			"request_id", event.RequestID,
		)
	}

	if publisher == nil {
		return
	}
	emitCtx, cancel := context.WithTimeout(ctx, EmitTimeout)
	defer cancel()
	if err := publisher.Emit(emitCtx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
