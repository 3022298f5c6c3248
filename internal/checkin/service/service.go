// Package service orchestrates one check-in: resolve the participant, decide
// which transitions are still required, then fan out label rendering and
// remote writes concurrently.
//
// Branches are never cancelled once dispatched. Their effects (a printed label,
// a written timestamp) cannot be rolled back, so a failed outcome means "some
// effects may have completed, re-verify remote state".
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"regdesk/internal/checkin/metrics"
	"regdesk/internal/checkin/models"
	"regdesk/internal/checkin/ports"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

// Resolver finds the participant for a query.
type Resolver interface {
	Resolve(ctx context.Context, q models.Query) (*models.Participant, error)
}

// Coordinator applies check-in writes and reads team state.
type Coordinator interface {
	CheckInParticipant(ctx context.Context, participantID string) error
	CheckInTeam(ctx context.Context, team *models.Team) error
	TeamState(ctx context.Context, ordinal int) (*models.Team, error)
}

// Labels renders and prints label documents.
type Labels interface {
	RenderParticipant(ctx context.Context, p *models.Participant) (string, error)
	RenderAssets(ctx context.Context, team *models.Team, assets []models.Asset) ([]string, error)
}

// Scheduler runs work detached from the caller.
type Scheduler interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

type Locker = ports.Locker

const (
	planLabelOnly = "label_only"
	planFull      = "full"
	planNone      = "none"
)

// Service is the check-in orchestrator.
type Service struct {
	resolver    Resolver
	coordinator Coordinator
	labels      Labels
	assets      []models.Asset
	scheduler   Scheduler
	locker      Locker
	lockTTL     time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
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

// WithAssets overrides the asset catalogue issued once per team.
func WithAssets(assets []models.Asset) Option {
	return func(s *Service) {
		s.assets = assets
	}
}

// WithScheduler enables TriggerGenerateLabel.
func WithScheduler(scheduler Scheduler) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

// WithLocker serialises check-ins per participant and per team for ttl.
// Without a locker, concurrent identical requests may both write.
func WithLocker(locker Locker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func New(resolver Resolver, coordinator Coordinator, labels Labels, opts ...Option) (*Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if coordinator == nil {
		return nil, fmt.Errorf("coordinator is required")
	}
	if labels == nil {
		return nil, fmt.Errorf("label pipeline is required")
	}

	svc := &Service{
		resolver:    resolver,
		coordinator: coordinator,
		labels:      labels,
		assets:      models.DefaultAssets,
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer("regdesk/checkin"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if len(svc.assets) == 0 {
		return nil, fmt.Errorf("asset catalogue must not be empty")
	}
	return svc, nil
}

// GenerateLabel runs the full orchestration and blocks until every planned
// branch has settled. The returned outcome is non-nil even on failure.
func (s *Service) GenerateLabel(ctx context.Context, q models.Query) (*models.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "checkin.GenerateLabel")
	defer span.End()
	start := time.Now()

	outcome := &models.Outcome{State: models.StateResolving}
	plan := planNone

	finish := func(err error) (*models.Outcome, error) {
		if err != nil {
			outcome.State = models.StateFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, dErrors.PublicMessage(err))
		} else {
			outcome.State = models.StateDone
		}
		s.metrics.IncrementOutcome(string(outcome.State), plan)
		s.logger.InfoContext(ctx, "check-in orchestration finished",
			"request_id", requestcontext.RequestID(ctx),
			"state", outcome.State,
			"plan", plan,
			"participant_id", participantID(outcome.Participant),
			"was_checked_in", outcome.Observed.ParticipantCheckedIn,
			"team_was_issued", outcome.Observed.TeamAssetsIssued,
			"checked_in", outcome.CheckedIn,
			"team_issued", outcome.TeamIssued,
			"asset_labels", len(outcome.AssetLabels),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return outcome, err
	}

	participant, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return finish(err)
	}
	outcome.Participant = participant
	outcome.State = models.StateDeciding
	span.SetAttributes(
		attribute.String("participant.id", participant.ID),
		attribute.Int("team.ordinal", participant.TeamOrdinal),
	)

	if s.locker != nil && !participant.HasCheckedIn() {
		release, err := s.acquire(ctx, "participant:"+participant.ID)
		if err != nil {
			return finish(err)
		}
		defer s.release(ctx, release)

		// Another desk may have checked the participant in while we waited.
		participant, err = s.resolver.Resolve(ctx, models.Query{ID: participant.ID})
		if err != nil {
			return finish(err)
		}
		outcome.Participant = participant
	}
	outcome.Observed.ParticipantCheckedIn = participant.HasCheckedIn()

	// Dispatched branches must outlive a disconnecting caller.
	execCtx := context.WithoutCancel(ctx)
	outcome.State = models.StateExecuting

	var g errgroup.Group
	g.Go(func() error {
		path, err := s.labels.RenderParticipant(execCtx, participant)
		if err != nil {
			return err
		}
		outcome.ParticipantLabel = path
		return nil
	})

	if participant.HasCheckedIn() {
		plan = planLabelOnly
	} else {
		plan = planFull
		g.Go(func() error {
			if err := s.coordinator.CheckInParticipant(execCtx, participant.ID); err != nil {
				return err
			}
			outcome.CheckedIn = true
			return nil
		})
		g.Go(func() error {
			return s.issueTeamAssets(execCtx, participant, outcome)
		})
	}

	return finish(g.Wait())
}

// issueTeamAssets renders every asset label and marks the team issued, unless
// the team already received its assets. Rendering and the team write run
// concurrently; neither is gated on the other.
func (s *Service) issueTeamAssets(ctx context.Context, participant *models.Participant, outcome *models.Outcome) error {
	ctx, span := s.tracer.Start(ctx, "checkin.issueTeamAssets",
		trace.WithAttributes(attribute.Int("team.ordinal", participant.TeamOrdinal)))
	defer span.End()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "team:"+strconv.Itoa(participant.TeamOrdinal), s.lockTTL)
		if errors.Is(err, sentinel.ErrConflict) {
			// Another desk holds the team and is issuing its assets.
			s.logger.InfoContext(ctx, "team assets being issued elsewhere",
				"request_id", requestcontext.RequestID(ctx),
				"team_ordinal", participant.TeamOrdinal,
			)
			return nil
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, dErrors.MsgInternal)
		}
		defer s.release(ctx, release)
	}

	team, err := s.coordinator.TeamState(ctx, participant.TeamOrdinal)
	if err != nil {
		return err
	}
	outcome.Observed.TeamAssetsIssued = team.AssetsIssued()
	if team.AssetsIssued() {
		s.logger.DebugContext(ctx, "team assets already issued",
			"request_id", requestcontext.RequestID(ctx),
			"team_ordinal", team.Ordinal,
		)
		return nil
	}
	if team.Name == "" {
		team.Name = participant.Team
	}

	var g errgroup.Group
	g.Go(func() error {
		paths, err := s.labels.RenderAssets(ctx, team, s.assets)
		outcome.AssetLabels = paths
		return err
	})
	g.Go(func() error {
		if err := s.coordinator.CheckInTeam(ctx, team); err != nil {
			return err
		}
		outcome.TeamIssued = true
		return nil
	})
	return g.Wait()
}

// TriggerGenerateLabel validates the query and schedules GenerateLabel in the
// background. It returns as soon as the work is scheduled.
func (s *Service) TriggerGenerateLabel(ctx context.Context, q models.Query) error {
	q = models.NewQuery(q.ID, q.Name, q.Phone)
	if q.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidQuery, dErrors.MsgInvalidQuery)
	}
	if s.scheduler == nil {
		return dErrors.Wrap(fmt.Errorf("no scheduler configured"), dErrors.CodeInternal, dErrors.MsgInternal)
	}

	s.metrics.BackgroundStarted()
	err := s.scheduler.Go(ctx, "generate-label", func(ctx context.Context) error {
		defer s.metrics.BackgroundFinished()
		_, err := s.GenerateLabel(ctx, q)
		return err
	})
	if err != nil {
		s.metrics.BackgroundFinished()
		return dErrors.Wrap(err, dErrors.CodeInternal, dErrors.MsgInternal)
	}
	return nil
}

func (s *Service) acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	release, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if errors.Is(err, sentinel.ErrConflict) {
		return nil, dErrors.Wrap(err, dErrors.CodeBusy, dErrors.MsgBusy)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, dErrors.MsgInternal)
	}
	return release, nil
}

func (s *Service) release(ctx context.Context, release func(context.Context) error) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.WarnContext(ctx, "failed to release check-in lock",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func participantID(p *models.Participant) string {
	if p == nil {
		return ""
	}
	return p.ID
}
