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

func TestEnsureWorkspace(t *testing.T) {
	f := newFixture(t)

	again, err := f.svc.EnsureWorkspace(f.ctx, f.owner, f.identity("owner", "org:admin"))
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, again.ID)
	assert.Equal(t, f.owner.ID, again.OwnerID)
	assert.Equal(t, "acme", again.Name)

	member := f.member("bob")
	members, err := f.svc.ListMembers(f.ctx, f.ws.ID, member.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	channels, err := f.svc.ListChannels(f.ctx, f.ws.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, models.ChannelGeneral, channels[0].Type)

	got, err := f.svc.GetWorkspace(f.ctx, f.ws.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, got.ID)

	missing, err := f.svc.GetWorkspace(f.ctx, uuid.New(), member.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEnsureWorkspacePersonal(t *testing.T) {
	f := newFixture(t)
	solo := f.user("solo", "")
	id := &Identity{Subject: "solo", Name: "solo name"}

	ws, err := f.svc.EnsureWorkspace(f.ctx, solo, id)
	require.NoError(t, err)
	assert.NotEqual(t, f.ws.ID, ws.ID)
	assert.Equal(t, "solo name's workspace", ws.Name)

	_, err = f.svc.ListMembers(f.ctx, f.ws.ID, solo.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMemberCapacityCountsPendingInvitations(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 8; i++ {
		f.member(fmt.Sprintf("member_%d", i))
	}
	admin := f.identity("owner", "org:admin")

	inv, token, err := f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, admin, "tenth@example.com", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "member", inv.Role)
	assert.NotEqual(t, token, inv.TokenHash)

	_, _, err = f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, admin, "eleventh@example.com", "")
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Contains(t, err.Error(), "10")

	// the reserved seat cannot be taken by someone walking in uninvited
	walkIn := f.user("walk_in", "org:member")
	_, err = f.svc.EnsureWorkspace(f.ctx, walkIn, f.identity("walk_in", "org:member"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestInviteRules(t *testing.T) {
	f := newFixture(t)
	admin := f.identity("owner", "org:admin")
	member := f.member("bob")

	_, _, err := f.svc.InviteMember(f.ctx, f.ws.ID, member, f.identity("bob", "org:member"), "x@example.com", "")
	assert.ErrorIs(t, err, ErrForbidden)

	// org admins may invite even when they do not own the workspace
	orgAdmin := f.member("carol")
	_, _, err = f.svc.InviteMember(f.ctx, f.ws.ID, orgAdmin, f.identity("carol", "org:admin"), "y@example.com", "")
	assert.NoError(t, err)

	_, _, err = f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, admin, "BOB@example.com", "")
	assert.ErrorIs(t, err, ErrConflict)

	_, _, err = f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, admin, " y@example.com ", "")
	assert.ErrorIs(t, err, ErrConflict)

	_, _, err = f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, admin, "  ", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAcceptInvitation(t *testing.T) {
	f := newFixture(t)
	admin := f.identity("owner", "org:admin")

	inv, token, err := f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, admin, "dave@example.com", "")
	require.NoError(t, err)

	dave := f.user("dave", "")
	stranger := f.user("erin", "")

	_, err = f.svc.AcceptInvitation(f.ctx, inv.ID, "wrong", dave)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AcceptInvitation(f.ctx, inv.ID, token, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	ws, err := f.svc.AcceptInvitation(f.ctx, inv.ID, token, dave)
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, ws.ID)

	members, err := f.svc.ListMembers(f.ctx, f.ws.ID, dave.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = f.svc.AcceptInvitation(f.ctx, inv.ID, token, dave)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptExpiredInvitation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return now }))

	inv, token, err := f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, f.identity("owner", "org:admin"), "late@example.com", "")
	require.NoError(t, err)

	now = now.Add(8 * 24 * time.Hour)
	late := f.user("late", "")
	_, err = f.svc.AcceptInvitation(f.ctx, inv.ID, token, late)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInvitedUserJoinsThroughEnsure(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, f.identity("owner", "org:admin"), "frank@example.com", "")
	require.NoError(t, err)

	f.member("frank")

	_, _, err = f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, f.identity("owner", "org:admin"), "frank@example.com", "")
	assert.ErrorIs(t, err, ErrConflict, "frank is a member and the invitation was consumed")
}

func TestRevokeInvitation(t *testing.T) {
	f := newFixture(t)
	admin := f.identity("owner", "org:admin")
	member := f.member("bob")

	inv, _, err := f.svc.InviteMember(f.ctx, f.ws.ID, f.owner, admin, "gina@example.com", "")
	require.NoError(t, err)

	err = f.svc.RevokeInvitation(f.ctx, inv.ID, member, f.identity("bob", "org:member"))
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.RevokeInvitation(f.ctx, inv.ID, f.owner, admin))
	assert.ErrorIs(t, f.svc.RevokeInvitation(f.ctx, inv.ID, f.owner, admin), ErrNotFound)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	bob := f.member("bob")
	carol := f.member("carol")

	assert.ErrorIs(t, f.svc.RemoveMember(f.ctx, f.ws.ID, bob.ID, carol.ID), ErrForbidden)
	assert.ErrorIs(t, f.svc.RemoveMember(f.ctx, f.ws.ID, f.owner.ID, f.owner.ID), ErrInvalidState)

	require.NoError(t, f.svc.RemoveMember(f.ctx, f.ws.ID, f.owner.ID, bob.ID))
	_, err := f.svc.ListRooms(f.ctx, f.ws.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
