package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub) *Client {
	return NewClient(hub, nil, uuid.New())
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub)
	hub.Register(client)
	require.Eventually(t, func() bool { return len(hub.OnlineUsers()) == 1 }, time.Second, 10*time.Millisecond)

	channelID := uuid.New()
	hub.JoinChannel(client, channelID)
	assert.Equal(t, []uuid.UUID{client.UserID}, hub.ChannelUsers(channelID))

	hub.Unregister(client)
	require.Eventually(t, func() bool { return len(hub.OnlineUsers()) == 0 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, hub.ChannelUsers(channelID))
}

func TestHubPublishReachesSubscribersOnly(t *testing.T) {
	hub := NewHub()
	channelID := uuid.New()

	alice := newTestClient(hub)
	bob := newTestClient(hub)
	carol := newTestClient(hub)

	hub.JoinChannel(alice, channelID)
	users := receive(t, alice)
	assert.Equal(t, TypeChannelUsers, users.Type)

	hub.JoinChannel(bob, channelID)
	joined := receive(t, alice)
	assert.Equal(t, TypeChannelJoin, joined.Type)
	assert.Equal(t, bob.UserID, joined.UserID)
	drain(bob)

	require.NoError(t, hub.Publish(channelID, TypeMessage, alice.UserID, map[string]string{"content": "hi"}))

	for _, c := range []*Client{alice, bob} {
		msg := receive(t, c)
		assert.Equal(t, TypeMessage, msg.Type)
		require.NotNil(t, msg.ChannelID)
		assert.Equal(t, channelID, *msg.ChannelID)
		assert.JSONEq(t, `{"content":"hi"}`, string(msg.Data))
	}
	assert.Empty(t, carol.Send)
}

func TestHubLeaveChannel(t *testing.T) {
	hub := NewHub()
	channelID := uuid.New()
	alice := newTestClient(hub)
	bob := newTestClient(hub)

	hub.JoinChannel(alice, channelID)
	hub.JoinChannel(bob, channelID)
	drain(alice)
	drain(bob)

	hub.LeaveChannel(bob, channelID)
	left := receive(t, alice)
	assert.Equal(t, TypeChannelLeave, left.Type)
	assert.False(t, bob.IsSubscribed(channelID))

	require.NoError(t, hub.Publish(channelID, TypeMessage, alice.UserID, nil))
	receive(t, alice)
	assert.Empty(t, bob.Send)
}

func TestHubCloseChannel(t *testing.T) {
	hub := NewHub()
	channelID := uuid.New()
	alice := newTestClient(hub)

	hub.JoinChannel(alice, channelID)
	drain(alice)

	hub.CloseChannel(channelID)
	msg := receive(t, alice)
	assert.Equal(t, TypeChannelDeleted, msg.Type)
	assert.False(t, alice.IsSubscribed(channelID))
	assert.Empty(t, hub.ChannelUsers(channelID))

	hub.CloseChannel(channelID)
	assert.Empty(t, alice.Send)
}

func TestClientSendMessageQueueFull(t *testing.T) {
	client := newTestClient(NewHub())
	client.Send = make(chan []byte, 1)

	require.NoError(t, client.SendMessage(TypePing, nil, nil))
	assert.ErrorIs(t, client.SendMessage(TypePing, nil, nil), ErrClientQueueFull)
}

func TestHubStopDropsSubscriptions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub)
	hub.Register(client)
	require.Eventually(t, func() bool { return len(hub.OnlineUsers()) == 1 }, time.Second, 10*time.Millisecond)

	channelID := uuid.New()
	hub.JoinChannel(client, channelID)
	hub.Stop()

	assert.NotPanics(t, func() {
		require.NoError(t, hub.Publish(channelID, TypeMessage, client.UserID, nil))
		hub.JoinChannel(client, channelID)
		hub.CloseChannel(channelID)
	})
	assert.Empty(t, hub.ChannelUsers(channelID))
	assert.Empty(t, hub.OnlineUsers())
}
