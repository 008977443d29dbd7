package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type MessageType string

const (
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	TypeMessage       MessageType = "message"
	TypeMessageEdit   MessageType = "message_edit"
	TypeMessageDelete MessageType = "message_delete"
	TypeMessageReact  MessageType = "message_reaction"

	TypeChannelJoin    MessageType = "channel_join"
	TypeChannelLeave   MessageType = "channel_leave"
	TypeChannelUsers   MessageType = "channel_users"
	TypeChannelDeleted MessageType = "channel_deleted"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	ChannelID *uuid.UUID      `json:"channel_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Conn     *websocket.Conn
	Send     chan []byte
	Channels map[uuid.UUID]bool
	Hub      *Hub
	mu       sync.RWMutex
}

// Hub fans chat events out to the websocket clients subscribed to a
// channel. One user may hold several connections.
type Hub struct {
	clients     map[uuid.UUID]*Client
	userClients map[uuid.UUID]map[uuid.UUID]*Client
	channels    map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		channels:    make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run processes registrations and pings clients until Stop.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, id)
	}
	h.channels = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	log.Debug().Str("client_id", client.ID.String()).Str("user_id", client.UserID.String()).Msg("client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, channelID := range client.ChannelIDs() {
		h.removeFromChannelUnsafe(client, channelID)
	}

	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	log.Debug().Str("client_id", client.ID.String()).Str("user_id", client.UserID.String()).Msg("client unregistered")
}

// JoinChannel subscribes the client. Access must be checked by the caller.
func (h *Hub) JoinChannel(client *Client, channelID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		return
	}

	if _, ok := h.channels[channelID]; !ok {
		h.channels[channelID] = make(map[uuid.UUID]*Client)
	}
	h.channels[channelID][client.ID] = client

	client.mu.Lock()
	client.Channels[channelID] = true
	client.mu.Unlock()

	if data, err := encode(TypeChannelJoin, &channelID, client.UserID, nil); err == nil {
		h.broadcastUnsafe(channelID, data, client.ID)
	}
	h.sendChannelUsersUnsafe(client, channelID)
}

func (h *Hub) LeaveChannel(client *Client, channelID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromChannelUnsafe(client, channelID)
}

func (h *Hub) removeFromChannelUnsafe(client *Client, channelID uuid.UUID) {
	subs, ok := h.channels[channelID]
	if !ok {
		return
	}
	if _, ok := subs[client.ID]; !ok {
		return
	}

	delete(subs, client.ID)
	client.mu.Lock()
	delete(client.Channels, channelID)
	client.mu.Unlock()

	if len(subs) == 0 {
		delete(h.channels, channelID)
		return
	}
	if data, err := encode(TypeChannelLeave, &channelID, client.UserID, nil); err == nil {
		h.broadcastUnsafe(channelID, data, client.ID)
	}
}

// Publish sends an event to every subscriber of a channel.
func (h *Hub) Publish(channelID uuid.UUID, msgType MessageType, userID uuid.UUID, payload interface{}) error {
	data, err := encode(msgType, &channelID, userID, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.broadcastUnsafe(channelID, data, uuid.Nil)
	return nil
}

// CloseChannel tells subscribers the channel is gone and drops their
// subscriptions.
func (h *Hub) CloseChannel(channelID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[channelID]
	if !ok {
		return
	}
	if data, err := encode(TypeChannelDeleted, &channelID, uuid.Nil, nil); err == nil {
		h.broadcastUnsafe(channelID, data, uuid.Nil)
	}
	for _, client := range subs {
		client.mu.Lock()
		delete(client.Channels, channelID)
		client.mu.Unlock()
	}
	delete(h.channels, channelID)
}

// broadcastUnsafe is a no-op once the hub is stopped, since Stop closes
// every send queue.
func (h *Hub) broadcastUnsafe(channelID uuid.UUID, message []byte, excludeID uuid.UUID) {
	if h.ctx.Err() != nil {
		return
	}
	for _, client := range h.channels[channelID] {
		if client.ID == excludeID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			log.Warn().Str("client_id", client.ID.String()).Msg("send queue full")
		}
	}
}

func (h *Hub) sendChannelUsersUnsafe(client *Client, channelID uuid.UUID) {
	data, err := encode(TypeChannelUsers, &channelID, client.UserID, h.channelUsersUnsafe(channelID))
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn().Str("client_id", client.ID.String()).Msg("failed to send channel users")
	}
}

func (h *Hub) channelUsersUnsafe(channelID uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	users := make([]uuid.UUID, 0)
	for _, c := range h.channels[channelID] {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			users = append(users, c.UserID)
		}
	}
	return users
}

func (h *Hub) ping() {
	data, err := encode(TypePing, nil, uuid.Nil, nil)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// ChannelUsers lists the users with at least one connection subscribed to
// the channel.
func (h *Hub) ChannelUsers(channelID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.channelUsersUnsafe(channelID)
}

func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

func encode(msgType MessageType, channelID *uuid.UUID, userID uuid.UUID, payload interface{}) ([]byte, error) {
	msg := Message{
		Type:      msgType,
		ChannelID: channelID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Data = data
	}
	return json.Marshal(msg)
}
