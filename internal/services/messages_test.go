package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/vbase/internal/models"
)

func generalChannel(t *testing.T, f *fixture) *models.Channel {
	t.Helper()
	channels, err := f.svc.ListChannels(f.ctx, f.ws.ID, f.owner.ID)
	require.NoError(t, err)
	for _, ch := range channels {
		if ch.Type == models.ChannelGeneral {
			c := ch.Channel
			return &c
		}
	}
	t.Fatal("no general channel")
	return nil
}

func TestSendAndListMessages(t *testing.T) {
	f := newFixture(t)
	ch := generalChannel(t, f)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		msg, err := f.svc.SendMessage(f.ctx, ch.ID, f.owner, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		assert.Equal(t, "owner name", msg.AuthorName)
		ids = append(ids, msg.ID)
	}

	page, err := f.svc.ListMessages(f.ctx, ch.ID, f.owner.ID, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[4], page[1].ID)

	older, err := f.svc.ListMessages(f.ctx, ch.ID, f.owner.ID, 10, &page[0].ID)
	require.NoError(t, err)
	require.Len(t, older, 3)
	assert.Equal(t, ids[0], older[0].ID)

	_, err = f.svc.SendMessage(f.ctx, ch.ID, f.owner, "   ")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestListMessagesPagesThroughTimestampTies(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return now }))
	ch := generalChannel(t, f)

	var sent []uuid.UUID
	for i := 0; i < 4; i++ {
		msg, err := f.svc.SendMessage(f.ctx, ch.ID, f.owner, fmt.Sprintf("burst %d", i))
		require.NoError(t, err)
		sent = append(sent, msg.ID)
	}

	var seen []uuid.UUID
	var before *uuid.UUID
	for {
		page, err := f.svc.ListMessages(f.ctx, ch.ID, f.owner.ID, 2, before)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			seen = append(seen, m.ID)
		}
		first := page[0].ID
		before = &first
	}

	assert.ElementsMatch(t, sent, seen)
	assert.Len(t, seen, 4, "no message is skipped or repeated")
}

func TestOnlyAuthorsEditAndDelete(t *testing.T) {
	f := newFixture(t)
	ch := generalChannel(t, f)
	bob := f.member("bob")

	msg, err := f.svc.SendMessage(f.ctx, ch.ID, f.owner, "draft")
	require.NoError(t, err)

	_, err = f.svc.EditMessage(f.ctx, msg.ID, bob.ID, "hijack")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.DeleteMessage(f.ctx, msg.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	edited, err := f.svc.EditMessage(f.ctx, msg.ID, f.owner.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Content)
	assert.NotNil(t, edited.EditedAt)

	deleted, err := f.svc.DeleteMessage(f.ctx, msg.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.ID, deleted.ChannelID)

	_, err = f.svc.EditMessage(f.ctx, msg.ID, f.owner.ID, "again")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleReaction(t *testing.T) {
	f := newFixture(t)
	ch := generalChannel(t, f)
	bob := f.member("bob")

	msg, err := f.svc.SendMessage(f.ctx, ch.ID, f.owner, "ship it?")
	require.NoError(t, err)

	msg, err = f.svc.ToggleReaction(f.ctx, msg.ID, bob.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, msg.Reactions["👍"])

	msg, err = f.svc.ToggleReaction(f.ctx, msg.ID, f.owner.ID, "👍")
	require.NoError(t, err)
	assert.Len(t, msg.Reactions["👍"], 2)

	msg, err = f.svc.ToggleReaction(f.ctx, msg.ID, bob.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.owner.ID}, msg.Reactions["👍"])

	msg, err = f.svc.ToggleReaction(f.ctx, msg.ID, f.owner.ID, "👍")
	require.NoError(t, err)
	assert.NotContains(t, msg.Reactions, "👍")

	stored, err := f.db.GetMessage(msg.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Reactions)
}

func TestMarkSeen(t *testing.T) {
	f := newFixture(t)
	ch := generalChannel(t, f)
	bob := f.member("bob")

	msg, err := f.svc.SendMessage(f.ctx, ch.ID, f.owner, "hello")
	require.NoError(t, err)

	msg, err = f.svc.MarkSeen(f.ctx, msg.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, msg.SeenBy)

	msg, err = f.svc.MarkSeen(f.ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, msg.SeenBy, 1)
	first := msg.SeenBy[0].SeenAt

	msg, err = f.svc.MarkSeen(f.ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, msg.SeenBy, 1)
	assert.True(t, first.Equal(msg.SeenBy[0].SeenAt))
}

func TestUnreadCount(t *testing.T) {
	f := newFixture(t)
	ch := generalChannel(t, f)
	bob := f.member("bob")

	for i := 0; i < 3; i++ {
		_, err := f.svc.SendMessage(f.ctx, ch.ID, f.owner, fmt.Sprintf("news %d", i))
		require.NoError(t, err)
	}

	n, err := f.svc.UnreadCount(f.ctx, ch.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = f.svc.UnreadCount(f.ctx, ch.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "own messages are never unread")

	require.NoError(t, f.svc.MarkRead(f.ctx, ch.ID, bob.ID))
	n, err = f.svc.UnreadCount(f.ctx, ch.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.svc.SendMessage(f.ctx, ch.ID, f.owner, "one more")
	require.NoError(t, err)

	views, err := f.svc.ListChannels(f.ctx, f.ws.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(1), views[0].Unread)
}
