package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/models"
	"github.com/thereayou/vbase/internal/services"
)

// ArtifactHandler serves every artifact kind; the kind comes from the room
// type on create and from the stored artifact afterwards.
type ArtifactHandler struct {
	svc      *services.Service
	teardown *Teardown
}

func NewArtifactHandler(svc *services.Service, teardown *Teardown) *ArtifactHandler {
	return &ArtifactHandler{svc: svc, teardown: teardown}
}

func (h *ArtifactHandler) roomStore(c *gin.Context) (*models.Room, *services.ArtifactStore, bool) {
	user := middleware.CurrentUser(c)
	roomID, ok := paramUUID(c, "id")
	if !ok {
		return nil, nil, false
	}

	room, err := h.svc.AuthorizeRoom(c.Request.Context(), roomID, user.ID)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	kind, ok := room.Type.ArtifactKind()
	if !ok {
		respondError(c, &services.Error{
			Kind:    services.KindInvalidState,
			Reason:  services.ErrInvalidRoomType.Reason,
			Message: fmt.Sprintf("%s rooms hold no artifacts", room.Type),
		})
		return nil, nil, false
	}
	return room, h.svc.Artifacts(kind), true
}

// authorized loads the artifact named by the path and its kind's store.
func (h *ArtifactHandler) authorized(c *gin.Context) (*models.Artifact, *services.ArtifactStore, bool) {
	user := middleware.CurrentUser(c)
	artifactID, ok := paramUUID(c, "id")
	if !ok {
		return nil, nil, false
	}

	artifact, err := h.svc.AuthorizeArtifact(c.Request.Context(), artifactID, user.ID)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return artifact, h.svc.Artifacts(artifact.Kind), true
}

func (h *ArtifactHandler) CreateArtifact(c *gin.Context) {
	user := middleware.CurrentUser(c)
	room, store, ok := h.roomStore(c)
	if !ok {
		return
	}

	var req dto.CreateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	id, err := store.Create(ctx, room.ID, room.WorkspaceID, req.Name, user.ID, services.WithLanguage(req.Language))
	if err != nil {
		respondError(c, err)
		return
	}

	artifact, err := store.GetByID(ctx, id)
	if err != nil || artifact == nil {
		c.JSON(http.StatusCreated, gin.H{"id": id})
		return
	}
	c.JSON(http.StatusCreated, formatArtifact(artifact))
}

func (h *ArtifactHandler) ListArtifacts(c *gin.Context) {
	room, store, ok := h.roomStore(c)
	if !ok {
		return
	}

	views, err := store.ListByRoom(c.Request.Context(), room.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, len(views))
	for i := range views {
		result[i] = formatArtifactView(&views[i])
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": result})
}

// GetArtifact answers {"artifact": null} for an unknown id and includes the
// stored content.
func (h *ArtifactHandler) GetArtifact(c *gin.Context) {
	user := middleware.CurrentUser(c)
	artifactID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	artifact, err := h.svc.AuthorizeArtifact(c.Request.Context(), artifactID, user.ID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"artifact": nil})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response := formatArtifact(artifact)
	response["content"] = artifact.Content
	c.JSON(http.StatusOK, gin.H{"artifact": response})
}

func (h *ArtifactHandler) RenameArtifact(c *gin.Context) {
	artifact, store, ok := h.authorized(c)
	if !ok {
		return
	}

	var req dto.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := store.Rename(c.Request.Context(), artifact.ID, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordEdit is called by the realtime host when a user changes the
// artifact.
func (h *ArtifactHandler) RecordEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	artifact, store, ok := h.authorized(c)
	if !ok {
		return
	}

	if err := store.RecordEdit(c.Request.Context(), artifact.ID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArtifactHandler) UpdateContent(c *gin.Context) {
	user := middleware.CurrentUser(c)
	artifact, store, ok := h.authorized(c)
	if !ok {
		return
	}

	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := store.UpdateContent(c.Request.Context(), artifact.ID, user.ID, req.Content); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArtifactHandler) DeleteArtifact(c *gin.Context) {
	artifact, store, ok := h.authorized(c)
	if !ok {
		return
	}

	manifest, err := store.Delete(c.Request.Context(), artifact.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.teardown.Apply(manifest)

	c.JSON(http.StatusOK, manifest)
}

// OpenChannel returns the artifact's chat channel, creating it on first use.
func (h *ArtifactHandler) OpenChannel(c *gin.Context) {
	artifact, _, ok := h.authorized(c)
	if !ok {
		return
	}

	ch, err := h.svc.GetOrCreateFileChannel(c.Request.Context(), artifact.WorkspaceID, artifact.RoomID, artifact.ID, artifact.Kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatChannel(ch))
}
