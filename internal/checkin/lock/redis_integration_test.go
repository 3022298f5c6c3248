//go:build integration

package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regdesk/internal/checkin/lock"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/testutil/containers"
)

type RedisLockerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	locker *lock.RedisLocker
}

func TestRedisLockerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockerSuite))
}

func (s *RedisLockerSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.locker = lock.NewRedis(s.redis.Client)
}

func (s *RedisLockerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockerSuite) TestAcquireRelease() {
	ctx := context.Background()

	release, err := s.locker.Acquire(ctx, "participant:recP1", 10*time.Second)
	s.Require().NoError(err)

	_, err = s.locker.Acquire(ctx, "participant:recP1", 10*time.Second)
	s.ErrorIs(err, sentinel.ErrConflict)

	ttl, err := s.redis.Client.PTTL(ctx, "lock:participant:recP1").Result()
	s.Require().NoError(err)
	s.Positive(ttl)

	s.Require().NoError(release(ctx))
	release, err = s.locker.Acquire(ctx, "participant:recP1", 10*time.Second)
	s.Require().NoError(err)
	s.NoError(release(ctx))
}

func (s *RedisLockerSuite) TestExpiredLockIsNotReleasedByPreviousHolder() {
	ctx := context.Background()

	stale, err := s.locker.Acquire(ctx, "team:7", 50*time.Millisecond)
	s.Require().NoError(err)
	time.Sleep(100 * time.Millisecond)

	current, err := s.locker.Acquire(ctx, "team:7", 10*time.Second)
	s.Require().NoError(err)

	s.Require().NoError(stale(ctx))
	_, err = s.locker.Acquire(ctx, "team:7", 10*time.Second)
	s.ErrorIs(err, sentinel.ErrConflict, "stale release must not drop the current holder")

	s.NoError(current(ctx))
}

func (s *RedisLockerSuite) TestConcurrentAcquireExactlyOneWins() {
	ctx := context.Background()
	const desks = 30

	var wg sync.WaitGroup
	var won atomic.Int32
	for range desks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.locker.Acquire(ctx, "participant:recP9", 10*time.Second); err == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), won.Load())
}
