package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
)

func TestDeleteSubtreeMissingRecordsAreDone(t *testing.T) {
	f := newFixture(t)

	for _, kind := range []entity{entityRoom, entityArtifact, entityMeeting, entityChannel} {
		m := &Manifest{}
		err := f.db.Transaction(f.ctx, func(tx *database.Database) error {
			return deleteSubtree(tx, ref{kind: kind, id: uuid.New()}, m)
		})
		assert.NoError(t, err, kind)
		assert.Empty(t, m.SessionIDs)
		assert.Empty(t, m.ChannelIDs)
	}
}

func TestDeleteSubtreeUnknownKind(t *testing.T) {
	f := newFixture(t)
	err := f.db.Transaction(f.ctx, func(tx *database.Database) error {
		return deleteSubtree(tx, ref{kind: "workspace", id: uuid.New()}, &Manifest{})
	})
	assert.ErrorContains(t, err, "no ownership rule")
}

// A retry after the artifact already went away still removes the room and
// what is left under it.
func TestDeleteSubtreeCompletesPartialDeletion(t *testing.T) {
	f := newFixture(t)
	room := f.room(models.RoomDocument)
	kept := f.artifact(room, "kept")
	lost := f.artifact(room, "lost")

	require.NoError(t, f.db.DeleteArtifactRecord(lost.ID))

	m := &Manifest{}
	err := f.db.Transaction(f.ctx, func(tx *database.Database) error {
		return deleteSubtree(tx, ref{kind: entityRoom, id: room.ID}, m)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"document:" + kept.ID.String()}, m.SessionIDs)

	_, err = f.db.GetRoom(room.ID)
	assert.True(t, database.IsNotFound(err))
}
