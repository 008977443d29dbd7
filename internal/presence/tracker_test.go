package presence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTracker connects to VBASE_TEST_REDIS_URL and skips without it.
func newTestTracker(t *testing.T) (*Tracker, *time.Time) {
	t.Helper()
	url := os.Getenv("VBASE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VBASE_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	now := time.Now()
	tracker := NewTracker(rdb, 30*time.Second)
	tracker.now = func() time.Time { return now }
	return tracker, &now
}

func TestTrackerLeases(t *testing.T) {
	tracker, now := newTestTracker(t)
	ctx := context.Background()
	meetingID := uuid.New()
	t.Cleanup(func() { tracker.Forget(ctx, meetingID) })

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, tracker.Heartbeat(ctx, meetingID, alice))
	require.NoError(t, tracker.Heartbeat(ctx, meetingID, bob))

	n, err := tracker.LiveCount(ctx, meetingID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, tracker.Release(ctx, meetingID, bob))
	n, err = tracker.LiveCount(ctx, meetingID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	*now = now.Add(31 * time.Second)
	n, err = tracker.LiveCount(ctx, meetingID)
	require.NoError(t, err)
	assert.Zero(t, n, "an unrenewed lease expires")

	require.NoError(t, tracker.Heartbeat(ctx, meetingID, alice))
	require.NoError(t, tracker.Forget(ctx, meetingID))
	n, err = tracker.LiveCount(ctx, meetingID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewTrackerDefaults(t *testing.T) {
	tracker := NewTracker(nil, 0)
	assert.Equal(t, DefaultTTL, tracker.TTL())

	id := uuid.MustParse("7f2c1a9e-3b4d-4e5f-8a6b-1c2d3e4f5a6b")
	assert.Equal(t, "presence:meeting:7f2c1a9e-3b4d-4e5f-8a6b-1c2d3e4f5a6b", meetingKey(id))
}
