//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "regdesk/pkg/platform/audit"
	"regdesk/pkg/testutil/containers"
)

func TestPublisher_EmitRoundTrip(t *testing.T) {
	broker := containers.NewRedpandaContainer(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pub, err := New([]string{broker}, "regdesk.checkin")
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.EnsureTopic(ctx, 1, 1))
	// Creating twice is tolerated.
	require.NoError(t, pub.EnsureTopic(ctx, 1, 1))

	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action:        audit.EventParticipantCheckedIn,
		ParticipantID: "recA1",
		TeamOrdinal:   7,
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics("regdesk.checkin"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "recA1", string(records[0].Key))
	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, audit.EventParticipantCheckedIn, got.Action)
	assert.Equal(t, audit.CategoryCheckIn, got.Category)
	assert.Equal(t, 7, got.TeamOrdinal)
}
