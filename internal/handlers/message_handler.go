package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/internal/websocket"
)

const wsOpTimeout = 10 * time.Second

// MessageHandler handles inbound websocket frames.
type MessageHandler struct {
	svc *services.Service
	hub *websocket.Hub
}

func NewMessageHandler(svc *services.Service, hub *websocket.Hub) *MessageHandler {
	return &MessageHandler{svc: svc, hub: hub}
}

func (h *MessageHandler) HandleMessage(client *websocket.Client, msg *websocket.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()

	switch msg.Type {
	case websocket.TypeChannelJoin:
		return h.handleJoin(ctx, client, msg)

	case websocket.TypeChannelLeave:
		if msg.ChannelID == nil {
			return websocket.ErrInvalidMessage
		}
		h.hub.LeaveChannel(client, *msg.ChannelID)
		return nil

	case websocket.TypeMessage:
		return h.handleTextMessage(ctx, client, msg)

	case websocket.TypeMessageEdit:
		return h.handleMessageEdit(ctx, client, msg)

	case websocket.TypeMessageDelete:
		return h.handleMessageDelete(ctx, client, msg)

	default:
		log.Debug().Str("type", string(msg.Type)).Msg("unknown websocket message type")
		return websocket.ErrUnknownMessageType
	}
}

// handleJoin subscribes the client after the same access check the REST
// surface applies.
func (h *MessageHandler) handleJoin(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	if msg.ChannelID == nil {
		return websocket.ErrInvalidMessage
	}
	if _, err := h.svc.AuthorizeChannel(ctx, *msg.ChannelID, client.UserID); err != nil {
		return err
	}
	h.hub.JoinChannel(client, *msg.ChannelID)
	return nil
}

func (h *MessageHandler) handleTextMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	if msg.ChannelID == nil {
		return websocket.ErrInvalidMessage
	}
	if !client.IsSubscribed(*msg.ChannelID) {
		return websocket.ErrNotSubscribed
	}

	var payload dto.MessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Content == "" {
		return websocket.ErrInvalidMessage
	}

	author, err := h.svc.GetUser(ctx, client.UserID)
	if err != nil {
		return err
	}

	message, err := h.svc.SendMessage(ctx, *msg.ChannelID, author, payload.Content)
	if err != nil {
		return err
	}
	return h.hub.Publish(message.ChannelID, websocket.TypeMessage, client.UserID, formatMessage(message))
}

func (h *MessageHandler) handleMessageEdit(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var ref dto.MessageRef
	if err := json.Unmarshal(msg.Data, &ref); err != nil || ref.Content == "" {
		return websocket.ErrInvalidMessage
	}

	message, err := h.svc.EditMessage(ctx, ref.MessageID, client.UserID, ref.Content)
	if err != nil {
		return err
	}
	return h.hub.Publish(message.ChannelID, websocket.TypeMessageEdit, client.UserID, formatMessage(message))
}

func (h *MessageHandler) handleMessageDelete(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var ref dto.MessageRef
	if err := json.Unmarshal(msg.Data, &ref); err != nil {
		return websocket.ErrInvalidMessage
	}

	message, err := h.svc.DeleteMessage(ctx, ref.MessageID, client.UserID)
	if err != nil {
		return err
	}
	return h.hub.Publish(message.ChannelID, websocket.TypeMessageDelete, client.UserID, formatMessage(message))
}
