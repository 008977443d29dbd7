package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/internal/websocket"
)

type WorkspaceHandler struct {
	svc *services.Service
	hub *websocket.Hub
}

func NewWorkspaceHandler(svc *services.Service, hub *websocket.Hub) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, hub: hub}
}

// EnsureCurrent returns the caller's workspace, creating it on first entry.
func (h *WorkspaceHandler) EnsureCurrent(c *gin.Context) {
	user := middleware.CurrentUser(c)

	ws, err := h.svc.EnsureWorkspace(c.Request.Context(), user, middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, formatWorkspace(ws))
}

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	user := middleware.CurrentUser(c)
	workspaceID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	members, err := h.svc.ListMembers(c.Request.Context(), workspaceID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	online := make(map[uuid.UUID]bool)
	for _, id := range h.hub.OnlineUsers() {
		online[id] = true
	}

	result := make([]gin.H, len(members))
	for i := range members {
		result[i] = formatUser(&members[i])
		result[i]["online"] = online[members[i].ID]
	}
	c.JSON(http.StatusOK, gin.H{"members": result})
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	user := middleware.CurrentUser(c)
	workspaceID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	memberID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(c.Request.Context(), workspaceID, user.ID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Invite reserves a member slot for an email. The token is only ever
// returned here.
func (h *WorkspaceHandler) Invite(c *gin.Context) {
	user := middleware.CurrentUser(c)
	workspaceID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, token, err := h.svc.InviteMember(c.Request.Context(), workspaceID, user, middleware.CurrentIdentity(c), req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	response := formatInvitation(inv)
	response["token"] = token
	c.JSON(http.StatusCreated, response)
}

func (h *WorkspaceHandler) AcceptInvitation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	invitationID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := h.svc.AcceptInvitation(c.Request.Context(), invitationID, req.Token, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatWorkspace(ws))
}

func (h *WorkspaceHandler) RevokeInvitation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	invitationID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.RevokeInvitation(c.Request.Context(), invitationID, user, middleware.CurrentIdentity(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
