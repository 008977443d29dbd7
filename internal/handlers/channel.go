package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/internal/websocket"
)

type ChannelHandler struct {
	svc *services.Service
	hub *websocket.Hub
}

func NewChannelHandler(svc *services.Service, hub *websocket.Hub) *ChannelHandler {
	return &ChannelHandler{svc: svc, hub: hub}
}

// ListChannels returns the channels the caller can see with unread counts
// and the number of users currently subscribed.
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	user := middleware.CurrentUser(c)
	workspaceID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	views, err := h.svc.ListChannels(c.Request.Context(), workspaceID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, len(views))
	for i := range views {
		response := formatChannel(&views[i].Channel)
		response["unread"] = views[i].Unread
		response["online_count"] = len(h.hub.ChannelUsers(views[i].ID))
		result[i] = response
	}
	c.JSON(http.StatusOK, gin.H{"channels": result})
}

func (h *ChannelHandler) OpenDirect(c *gin.Context) {
	user := middleware.CurrentUser(c)
	workspaceID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.DirectChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch, err := h.svc.GetOrCreateDirectChannel(c.Request.Context(), workspaceID, user.ID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatChannel(ch))
}

// GetChannel answers {"channel": null} for an unknown id.
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	user := middleware.CurrentUser(c)
	channelID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	ch, err := h.svc.GetChannel(c.Request.Context(), channelID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ch == nil {
		c.JSON(http.StatusOK, gin.H{"channel": nil})
		return
	}

	response := formatChannel(ch)
	response["online_users"] = h.hub.ChannelUsers(ch.ID)
	c.JSON(http.StatusOK, gin.H{"channel": response})
}

func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	user := middleware.CurrentUser(c)
	channelID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteChannel(c.Request.Context(), channelID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	h.hub.CloseChannel(channelID)

	c.Status(http.StatusNoContent)
}
