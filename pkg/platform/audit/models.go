package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCheckIn covers state transitions on remote records. These are the
	// facts event staff reconcile against when a request reported failure.
	CategoryCheckIn EventCategory = "checkin"

	// CategoryOperations covers label rendering and printing, useful for
	// operational visibility at the desk.
	CategoryOperations EventCategory = "operations"
)

// AuditEvent names an action emitted from domain logic.
type AuditEvent string

const (
	EventParticipantCheckedIn AuditEvent = "participant_checked_in"
	EventTeamAssetsIssued     AuditEvent = "team_assets_issued"
	EventCheckInFailed        AuditEvent = "checkin_failed"
	EventLabelRendered        AuditEvent = "label_rendered"
	EventLabelPrintFailed     AuditEvent = "label_print_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventParticipantCheckedIn: CategoryCheckIn,
	EventTeamAssetsIssued:     CategoryCheckIn,
	EventCheckInFailed:        CategoryCheckIn,
	EventLabelRendered:        CategoryOperations,
	EventLabelPrintFailed:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category      EventCategory `json:"category"`
	Timestamp     time.Time     `json:"timestamp"`
	Action        AuditEvent    `json:"action"`
	ParticipantID string        `json:"participant_id,omitempty"`
	TeamOrdinal   int           `json:"team_ordinal,omitempty"`
	Subject       string        `json:"subject,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	RequestID     string        `json:"request_id,omitempty"`
}

// Publisher emits audit events. Implementations must be safe for concurrent use;
// the orchestrator emits from several goroutines of one request.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
