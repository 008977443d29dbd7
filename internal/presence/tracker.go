// Package presence keeps time-bounded participant leases for meetings in
// Redis. A participant that stops heartbeating drops out once its lease
// expires, which lets the meeting counter recover from clients that vanish
// without leaving.
package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const DefaultTTL = 45 * time.Second

type Tracker struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewTracker(rdb redis.Cmdable, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{rdb: rdb, ttl: ttl, now: time.Now}
}

func (t *Tracker) TTL() time.Duration { return t.ttl }

func meetingKey(meetingID uuid.UUID) string {
	return "presence:meeting:" + meetingID.String()
}

// Heartbeat extends userID's lease on the meeting by one TTL.
func (t *Tracker) Heartbeat(ctx context.Context, meetingID, userID uuid.UUID) error {
	key := meetingKey(meetingID)
	expiry := t.now().Add(t.ttl).UnixMilli()

	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, &redis.Z{Score: float64(expiry), Member: userID.String()})
		pipe.Expire(ctx, key, 2*t.ttl)
		return nil
	})
	return err
}

func (t *Tracker) Release(ctx context.Context, meetingID, userID uuid.UUID) error {
	return t.rdb.ZRem(ctx, meetingKey(meetingID), userID.String()).Err()
}

// LiveCount drops expired leases and counts the rest.
func (t *Tracker) LiveCount(ctx context.Context, meetingID uuid.UUID) (int, error) {
	key := meetingKey(meetingID)
	cutoff := strconv.FormatInt(t.now().UnixMilli(), 10)

	var card *redis.IntCmd
	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
		card = pipe.ZCard(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(card.Val()), nil
}

// Forget drops every lease of a meeting that no longer exists.
func (t *Tracker) Forget(ctx context.Context, meetingID uuid.UUID) error {
	return t.rdb.Del(ctx, meetingKey(meetingID)).Err()
}
