// Package resolver turns a partial participant query into exactly one
// team-assigned participant.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"regdesk/internal/checkin/metrics"
	"regdesk/internal/checkin/models"
	"regdesk/internal/checkin/ports"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/requestcontext"
)

// Store is the read side of the record store used for identity lookups.
type Store interface {
	SearchParticipants(ctx context.Context, q models.Query, limit int) ([]models.Participant, error)
}

var _ Store = (ports.RecordStore)(nil)

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	strict  bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStrictMatch makes more than one matching row an AmbiguousQuery error
// instead of silently taking the first.
func WithStrictMatch(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
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

// Resolve performs one bounded disjunctive lookup and returns the first row.
func (s *Service) Resolve(ctx context.Context, q models.Query) (*models.Participant, error) {
	q = models.NewQuery(q.ID, q.Name, q.Phone)
	if q.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvalidQuery, dErrors.MsgInvalidQuery)
	}

	start := time.Now()
	rows, err := s.store.SearchParticipants(ctx, q, models.SearchLimit)
	s.metrics.ObserveStage("resolve", time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "participant lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeRemoteReadFailed, dErrors.MsgRemoteReadFailed)
	}
	if len(rows) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, dErrors.MsgNotFound)
	}
	if len(rows) > 1 {
		if s.strict {
			return nil, dErrors.New(dErrors.CodeAmbiguousQuery, dErrors.MsgAmbiguousQuery)
		}
		s.logger.WarnContext(ctx, "query matched several participants, using first",
			"request_id", requestcontext.RequestID(ctx),
			"matches", len(rows),
			"participant_id", rows[0].ID,
		)
	}

	p := rows[0]
	if !p.HasTeam() {
		return nil, dErrors.New(dErrors.CodeNoTeam, dErrors.MsgNoTeam)
	}
	return &p, nil
}
