package presence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type staticLeases map[uuid.UUID]int

func (s staticLeases) LiveCount(_ context.Context, meetingID uuid.UUID) (int, error) {
	return s[meetingID], nil
}

func TestSweeperEndsAbandonedMeetings(t *testing.T) {
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "vbase.db")), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	leases := staticLeases{}
	svc := services.New(db, services.WithPresence(leases), services.WithLogger(zerolog.Nop()))
	ctx := context.Background()

	id := &services.Identity{Subject: "host", Name: "Host", OrgID: "org_sweep"}
	host, err := svc.EnsureUser(ctx, id)
	require.NoError(t, err)
	ws, err := svc.EnsureWorkspace(ctx, host, id)
	require.NoError(t, err)
	room, err := svc.CreateRoom(ctx, ws.ID, host.ID, "calls", "conference")
	require.NoError(t, err)

	abandoned, err := svc.CreateMeeting(ctx, room.ID, host.ID, "abandoned")
	require.NoError(t, err)
	live, err := svc.CreateMeeting(ctx, room.ID, host.ID, "live")
	require.NoError(t, err)
	leases[live.ID] = 2

	var ended []string
	sweeper := NewSweeper(svc, time.Hour, 0, func(m *services.Manifest) {
		ended = append(ended, m.SessionIDs...)
	})
	sweeper.sweep(ctx)

	assert.Equal(t, []string{abandoned.SessionName}, ended)

	still, err := svc.GetMeeting(ctx, live.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, 2, still.ParticipantCount)
}

func TestSweeperRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSweeper(nil, time.Hour, time.Hour, nil).Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
