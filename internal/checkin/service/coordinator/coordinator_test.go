package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"regdesk/internal/checkin/models"
	"regdesk/internal/checkin/ports/mocks"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/audit"
	auditmemory "regdesk/pkg/platform/audit/publishers/memory"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

type CoordinatorSuite struct {
	suite.Suite
	store   *mocks.MockRecordStore
	events  *auditmemory.Publisher
	service *Service
	now     time.Time
	ctx     context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = mocks.NewMockRecordStore(ctrl)
	s.events = auditmemory.New()
	s.now = time.Date(2026, 7, 18, 9, 30, 0, 0, time.Local)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	var err error
	s.service, err = New(s.store, WithAuditPublisher(s.events))
	s.Require().NoError(err)
}

func (s *CoordinatorSuite) TestCheckInParticipant() {
	s.Run("writes request time", func() {
		s.store.EXPECT().SetParticipantCheckIn(gomock.Any(), "recA1", s.now).Return(nil)

		s.Require().NoError(s.service.CheckInParticipant(s.ctx, "recA1"))
		s.Equal([]audit.AuditEvent{audit.EventParticipantCheckedIn}, s.events.Actions())
	})

	s.Run("write failure advises manual correction", func() {
		s.events.Clear()
		s.store.EXPECT().SetParticipantCheckIn(gomock.Any(), "recA1", s.now).Return(errors.New("1254045 FieldNameNotFound"))

		err := s.service.CheckInParticipant(s.ctx, "recA1")
		s.True(dErrors.HasCode(err, dErrors.CodeCheckInWriteFailed))
		s.Contains(dErrors.PublicMessage(err), "手动修改")
		s.Equal([]audit.AuditEvent{audit.EventCheckInFailed}, s.events.Actions())
	})
}

func (s *CoordinatorSuite) TestCheckInTeam() {
	team := &models.Team{RecordID: "recT7", Ordinal: 7, Name: "T01"}

	s.Run("writes request time to team row", func() {
		s.store.EXPECT().SetTeamCheckIn(gomock.Any(), "recT7", s.now).Return(nil)

		s.Require().NoError(s.service.CheckInTeam(s.ctx, team))
		events := s.events.Events()
		s.Require().Len(events, 1)
		s.Equal(audit.EventTeamAssetsIssued, events[0].Action)
		s.Equal(7, events[0].TeamOrdinal)
	})

	s.Run("write failure is coded", func() {
		s.store.EXPECT().SetTeamCheckIn(gomock.Any(), "recT7", s.now).Return(errors.New("timeout"))

		err := s.service.CheckInTeam(s.ctx, team)
		s.True(dErrors.HasCode(err, dErrors.CodeCheckInWriteFailed))
	})
}

func (s *CoordinatorSuite) TestTeamState() {
	s.Run("returns current row", func() {
		s.store.EXPECT().FindTeam(gomock.Any(), 7).Return(&models.Team{RecordID: "recT7", Ordinal: 7}, nil)

		team, err := s.service.TeamState(s.ctx, 7)
		s.Require().NoError(err)
		s.False(team.AssetsIssued())
	})

	s.Run("missing team is not found", func() {
		s.store.EXPECT().FindTeam(gomock.Any(), 8).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.TeamState(s.ctx, 8)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(dErrors.MsgTeamNotFound, dErrors.PublicMessage(err))
	})

	s.Run("store failure is a remote read failure", func() {
		s.store.EXPECT().FindTeam(gomock.Any(), 9).Return(nil, errors.New("rate limited"))

		_, err := s.service.TeamState(s.ctx, 9)
		s.True(dErrors.HasCode(err, dErrors.CodeRemoteReadFailed))
	})
}
