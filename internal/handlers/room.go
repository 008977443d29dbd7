package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/services"
)

type RoomHandler struct {
	svc      *services.Service
	teardown *Teardown
}

func NewRoomHandler(svc *services.Service, teardown *Teardown) *RoomHandler {
	return &RoomHandler{svc: svc, teardown: teardown}
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	user := middleware.CurrentUser(c)
	workspaceID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.svc.CreateRoom(c.Request.Context(), workspaceID, user.ID, req.Name, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, formatRoom(room))
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	user := middleware.CurrentUser(c)
	workspaceID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	rooms, err := h.svc.ListRooms(c.Request.Context(), workspaceID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, len(rooms))
	for i := range rooms {
		result[i] = formatRoom(&rooms[i])
	}
	c.JSON(http.StatusOK, gin.H{"rooms": result})
}

// GetRoom answers {"room": null} for an unknown id.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	user := middleware.CurrentUser(c)
	roomID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	room, err := h.svc.GetRoom(c.Request.Context(), roomID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if room == nil {
		c.JSON(http.StatusOK, gin.H{"room": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": formatRoom(room)})
}

func (h *RoomHandler) RenameRoom(c *gin.Context) {
	user := middleware.CurrentUser(c)
	roomID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.svc.RenameRoom(c.Request.Context(), roomID, user.ID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, formatRoom(room))
}

// DeleteRoom removes the room with everything it owns and returns the
// sessions that were released.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	user := middleware.CurrentUser(c)
	roomID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	manifest, err := h.svc.DeleteRoom(c.Request.Context(), roomID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.teardown.Apply(manifest)

	c.JSON(http.StatusOK, manifest)
}
