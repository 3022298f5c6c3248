package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"regdesk/internal/checkin/models"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/requestcontext"
)

// LabelFileName is the attachment name of the participant label download.
const LabelFileName = "label.pdf"

// Service defines the check-in operations exposed over HTTP.
type Service interface {
	GenerateLabel(ctx context.Context, q models.Query) (*models.Outcome, error)
	TriggerGenerateLabel(ctx context.Context, q models.Query) error
}

// Handler wires label endpoints to the check-in orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the label endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/generate-label", h.HandleGenerateLabel)
	r.Get("/trigger-generate-label", h.HandleTriggerGenerateLabel)
}

// HandleGenerateLabel runs a check-in and returns the participant label PDF.
func (h *Handler) HandleGenerateLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	q, ok := queryFromRequest(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.GenerateLabel(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate label failed",
			"request_id", requestID,
			"error_code", dErrors.CodeOf(err),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	body, err := os.ReadFile(outcome.ParticipantLabel)
	if err != nil {
		h.logger.ErrorContext(ctx, "read rendered label failed",
			"request_id", requestID,
			"path", outcome.ParticipantLabel,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeRenderFailed, dErrors.MsgRenderFailed))
		return
	}

	h.logger.InfoContext(ctx, "label generated",
		"request_id", requestID,
		"participant_id", outcome.Participant.ID,
		"checked_in", outcome.CheckedIn,
		"team_issued", outcome.TeamIssued,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteFile(w, "application/pdf", LabelFileName, body)
}

// HandleTriggerGenerateLabel schedules a check-in and answers before it runs.
func (h *Handler) HandleTriggerGenerateLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, ok := queryFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.TriggerGenerateLabel(ctx, q); err != nil {
		h.logger.ErrorContext(ctx, "schedule label generation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteText(w, http.StatusOK, "ok")
}
