//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regdesk/internal/checkin/models"
	"regdesk/internal/checkin/store/postgres"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.postgres.Pool)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "participants", "teams"))

	s.Require().NoError(s.store.UpsertParticipant(ctx, models.Participant{ID: "recP1", Name: "张三", Phone: "13800000001", School: "一中", Team: "T01", TeamOrdinal: 7}))
	s.Require().NoError(s.store.UpsertParticipant(ctx, models.Participant{ID: "recP2", Name: "李四", Phone: "13800000002", School: "二中", Team: "T01", TeamOrdinal: 7}))
	s.Require().NoError(s.store.UpsertParticipant(ctx, models.Participant{ID: "recP3", Name: "张三", Phone: "13800000003", School: "三中"}))
	s.Require().NoError(s.store.UpsertTeam(ctx, models.Team{RecordID: "recT7", Ordinal: 7, Name: "T01"}))
}

func (s *PostgresStoreSuite) TestEnsureSchemaIsIdempotent() {
	s.NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) TestSearchParticipants() {
	ctx := context.Background()

	s.Run("disjunctive match", func() {
		got, err := s.store.SearchParticipants(ctx, models.Query{ID: "recP2", Phone: "13800000001"}, models.SearchLimit)
		s.Require().NoError(err)
		ids := []string{}
		for _, p := range got {
			ids = append(ids, p.ID)
		}
		s.ElementsMatch([]string{"recP1", "recP2"}, ids)
	})

	s.Run("empty fields never match", func() {
		got, err := s.store.SearchParticipants(ctx, models.Query{Name: "李四"}, models.SearchLimit)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("recP2", got[0].ID)
		s.Equal(7, got[0].TeamOrdinal)
		s.False(got[0].HasCheckedIn())
	})

	s.Run("limit caps duplicates", func() {
		got, err := s.store.SearchParticipants(ctx, models.Query{Name: "张三"}, 1)
		s.Require().NoError(err)
		s.Len(got, 1)
	})
}

func (s *PostgresStoreSuite) TestCheckInWrites() {
	ctx := context.Background()
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.SetParticipantCheckIn(ctx, "recP1", at))
	got, err := s.store.SearchParticipants(ctx, models.Query{ID: "recP1"}, 1)
	s.Require().NoError(err)
	s.Require().True(got[0].HasCheckedIn())
	s.True(at.Equal(*got[0].CheckedInAt))

	s.Require().NoError(s.store.SetTeamCheckIn(ctx, "recT7", at))
	team, err := s.store.FindTeam(ctx, 7)
	s.Require().NoError(err)
	s.True(team.AssetsIssued())

	s.ErrorIs(s.store.SetParticipantCheckIn(ctx, "missing", at), sentinel.ErrNotFound)
	s.ErrorIs(s.store.SetTeamCheckIn(ctx, "missing", at), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindTeamMissing() {
	_, err := s.store.FindTeam(context.Background(), 99)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// Without a lock, concurrent writers all succeed and the last timestamp wins.
func (s *PostgresStoreSuite) TestConcurrentCheckInLastWriteWins() {
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.NoError(s.store.SetParticipantCheckIn(ctx, "recP2", base.Add(time.Duration(i)*time.Second)))
		}(i)
	}
	wg.Wait()

	got, err := s.store.SearchParticipants(ctx, models.Query{ID: "recP2"}, 1)
	s.Require().NoError(err)
	s.True(got[0].HasCheckedIn())
}
