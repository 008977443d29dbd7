package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testOrg = "org_test"

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, _ := newTestStore(t)
	return db
}

// newTestStore also returns the raw gorm handle so tests can inspect and
// corrupt rows behind the service's back.
func newTestStore(t *testing.T) (*database.Database, *gorm.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vbase.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  logger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	db := database.NewDatabase(gdb)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db, gdb
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	db    *database.Database
	gdb   *gorm.DB
	svc   *Service
	owner *models.User
	ws    *models.Workspace
}

// newFixture builds a service over a fresh database with one workspace
// owned by an org admin.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db, gdb := newTestStore(t)
	svc := New(db, append([]Option{WithLogger(zerolog.Nop())}, opts...)...)

	f := &fixture{t: t, ctx: context.Background(), db: db, gdb: gdb, svc: svc}
	f.owner = f.user("owner", "org:admin")

	ws, err := svc.EnsureWorkspace(f.ctx, f.owner, f.identity("owner", "org:admin"))
	require.NoError(t, err)
	f.ws = ws
	return f
}

func (f *fixture) identity(subject, role string) *Identity {
	return &Identity{
		Subject: subject,
		Name:    subject + " name",
		Email:   subject + "@example.com",
		OrgID:   testOrg,
		OrgRole: role,
		OrgSlug: "acme",
	}
}

func (f *fixture) user(subject, role string) *models.User {
	f.t.Helper()
	u, err := f.svc.EnsureUser(f.ctx, f.identity(subject, role))
	require.NoError(f.t, err)
	return u
}

// member creates a user and joins it to the fixture workspace.
func (f *fixture) member(subject string) *models.User {
	f.t.Helper()
	u := f.user(subject, "org:member")
	_, err := f.svc.EnsureWorkspace(f.ctx, u, f.identity(subject, "org:member"))
	require.NoError(f.t, err)
	return u
}

func (f *fixture) room(roomType models.RoomType) *models.Room {
	f.t.Helper()
	room, err := f.svc.CreateRoom(f.ctx, f.ws.ID, f.owner.ID, string(roomType)+" room", string(roomType))
	require.NoError(f.t, err)
	return room
}

func (f *fixture) artifact(room *models.Room, name string) *models.Artifact {
	f.t.Helper()
	kind, ok := room.Type.ArtifactKind()
	require.True(f.t, ok)

	store := f.svc.Artifacts(kind)
	id, err := store.Create(f.ctx, room.ID, room.WorkspaceID, name, f.owner.ID)
	require.NoError(f.t, err)

	a, err := store.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, a)
	return a
}

// channelRows counts the rows of model still attached to a channel.
func (f *fixture) channelRows(model any, channelID uuid.UUID) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.gdb.Model(model).Where("channel_id = ?", channelID).Count(&n).Error)
	return n
}

func (f *fixture) setMeetingStatus(id uuid.UUID, status models.MeetingStatus) {
	f.t.Helper()
	require.NoError(f.t, f.gdb.Model(&models.Meeting{}).Where("id = ?", id).Update("status", status).Error)
}
