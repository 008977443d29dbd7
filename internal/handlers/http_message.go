package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/models"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/internal/websocket"
)

// HTTPMessageHandler is the REST surface of channel messages. Every change
// is also published to the channel's websocket subscribers.
type HTTPMessageHandler struct {
	svc *services.Service
	hub *websocket.Hub
}

func NewHTTPMessageHandler(svc *services.Service, hub *websocket.Hub) *HTTPMessageHandler {
	return &HTTPMessageHandler{svc: svc, hub: hub}
}

// GetChannelMessages returns a page of history, oldest first.
func (h *HTTPMessageHandler) GetChannelMessages(c *gin.Context) {
	user := middleware.CurrentUser(c)
	channelID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	limit := services.DefaultMessagePage
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= services.MaxMessagePage {
			limit = parsed
		}
	}

	var beforeID *uuid.UUID
	if before := c.Query("before"); before != "" {
		if id, err := uuid.Parse(before); err == nil {
			beforeID = &id
		}
	}

	messages, err := h.svc.ListMessages(c.Request.Context(), channelID, user.ID, limit, beforeID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, len(messages))
	for i := range messages {
		result[i] = formatMessage(&messages[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": result,
		"has_more": len(messages) == limit,
	})
}

func (h *HTTPMessageHandler) SendMessage(c *gin.Context) {
	user := middleware.CurrentUser(c)
	channelID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.MessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.svc.SendMessage(c.Request.Context(), channelID, user, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	h.publish(websocket.TypeMessage, message, user.ID)

	c.JSON(http.StatusCreated, formatMessage(message))
}

func (h *HTTPMessageHandler) UpdateMessage(c *gin.Context) {
	user := middleware.CurrentUser(c)
	messageID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.MessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.svc.EditMessage(c.Request.Context(), messageID, user.ID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	h.publish(websocket.TypeMessageEdit, message, user.ID)

	c.JSON(http.StatusOK, formatMessage(message))
}

func (h *HTTPMessageHandler) DeleteMessage(c *gin.Context) {
	user := middleware.CurrentUser(c)
	messageID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	message, err := h.svc.DeleteMessage(c.Request.Context(), messageID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.publish(websocket.TypeMessageDelete, message, user.ID)

	c.Status(http.StatusNoContent)
}

func (h *HTTPMessageHandler) ToggleReaction(c *gin.Context) {
	user := middleware.CurrentUser(c)
	messageID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.svc.ToggleReaction(c.Request.Context(), messageID, user.ID, req.Reaction)
	if err != nil {
		respondError(c, err)
		return
	}
	h.publish(websocket.TypeMessageReact, message, user.ID)

	c.JSON(http.StatusOK, formatMessage(message))
}

func (h *HTTPMessageHandler) MarkSeen(c *gin.Context) {
	user := middleware.CurrentUser(c)
	messageID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	message, err := h.svc.MarkSeen(c.Request.Context(), messageID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatMessage(message))
}

func (h *HTTPMessageHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	channelID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), channelID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPMessageHandler) publish(msgType websocket.MessageType, message *models.Message, actorID uuid.UUID) {
	if err := h.hub.Publish(message.ChannelID, msgType, actorID, formatMessage(message)); err != nil {
		log.Warn().Err(err).Str("channel_id", message.ChannelID.String()).Msg("publish message event")
	}
}
