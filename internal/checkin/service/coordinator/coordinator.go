// Package coordinator applies check-in writes to participant and team rows.
//
// The coordinator trusts the caller's gating decision: the record store has no
// compare-and-set, so re-reading here would only move the race, not remove it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"regdesk/internal/checkin/metrics"
	"regdesk/internal/checkin/models"
	"regdesk/internal/checkin/ports"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/audit"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

// Store is the write side of the record store plus the team lookup.
type Store interface {
	SetParticipantCheckIn(ctx context.Context, recordID string, at time.Time) error
	FindTeam(ctx context.Context, ordinal int) (*models.Team, error)
	SetTeamCheckIn(ctx context.Context, recordID string, at time.Time) error
}

type AuditPublisher = ports.AuditPublisher

type Service struct {
	store          Store
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	svc := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckInParticipant stamps the request time on the participant row.
func (s *Service) CheckInParticipant(ctx context.Context, participantID string) error {
	start := time.Now()
	err := s.store.SetParticipantCheckIn(ctx, participantID, requestcontext.Now(ctx))
	s.metrics.ObserveStage("participant_write", time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "participant check-in write failed",
			"request_id", requestcontext.RequestID(ctx),
			"participant_id", participantID,
			"error", err,
		)
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
			Action:        audit.EventCheckInFailed,
			ParticipantID: participantID,
			Reason:        err.Error(),
		})
		return dErrors.Wrap(err, dErrors.CodeCheckInWriteFailed, dErrors.MsgCheckInWriteFailed)
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:        audit.EventParticipantCheckedIn,
		ParticipantID: participantID,
	})
	return nil
}

// CheckInTeam stamps the request time on the team's asset-issuance field.
func (s *Service) CheckInTeam(ctx context.Context, team *models.Team) error {
	start := time.Now()
	err := s.store.SetTeamCheckIn(ctx, team.RecordID, requestcontext.Now(ctx))
	s.metrics.ObserveStage("team_write", time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "team asset check-in write failed",
			"request_id", requestcontext.RequestID(ctx),
			"team_ordinal", team.Ordinal,
			"team_record_id", team.RecordID,
			"error", err,
		)
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
			Action:      audit.EventCheckInFailed,
			TeamOrdinal: team.Ordinal,
			Subject:     team.RecordID,
			Reason:      err.Error(),
		})
		return dErrors.Wrap(err, dErrors.CodeCheckInWriteFailed, dErrors.MsgCheckInWriteFailed)
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:      audit.EventTeamAssetsIssued,
		TeamOrdinal: team.Ordinal,
		Subject:     team.RecordID,
	})
	return nil
}

// TeamState reads the current team row for an ordinal.
func (s *Service) TeamState(ctx context.Context, ordinal int) (*models.Team, error) {
	start := time.Now()
	team, err := s.store.FindTeam(ctx, ordinal)
	s.metrics.ObserveStage("team_read", time.Since(start))
	if errors.Is(err, sentinel.ErrNotFound) || (err == nil && team == nil) {
		return nil, dErrors.New(dErrors.CodeNotFound, dErrors.MsgTeamNotFound)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRemoteReadFailed, dErrors.MsgRemoteReadFailed)
	}
	return team, nil
}
