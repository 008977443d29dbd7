package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/internal/services"
)

// Presence records per-participant meeting leases. It is optional: without
// it the stored participant counter is authoritative.
type Presence interface {
	Heartbeat(ctx context.Context, meetingID, userID uuid.UUID) error
	Release(ctx context.Context, meetingID, userID uuid.UUID) error
	Forget(ctx context.Context, meetingID uuid.UUID) error
}

type MeetingHandler struct {
	svc      *services.Service
	presence Presence
	teardown *Teardown
}

func NewMeetingHandler(svc *services.Service, presence Presence, teardown *Teardown) *MeetingHandler {
	return &MeetingHandler{svc: svc, presence: presence, teardown: teardown}
}

func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	user := middleware.CurrentUser(c)
	roomID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.svc.CreateMeeting(c.Request.Context(), roomID, user.ID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, formatMeeting(meeting))
}

func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	user := middleware.CurrentUser(c)
	roomID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	meetings, err := h.svc.ListMeetings(c.Request.Context(), roomID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, len(meetings))
	for i := range meetings {
		result[i] = formatMeeting(&meetings[i])
	}
	c.JSON(http.StatusOK, gin.H{"meetings": result})
}

// GetMeeting answers {"meeting": null} once a meeting has ended.
func (h *MeetingHandler) GetMeeting(c *gin.Context) {
	user := middleware.CurrentUser(c)
	meetingID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	meeting, err := h.svc.AuthorizeMeeting(ctx, meetingID, user.ID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"meeting": nil})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response := formatMeeting(meeting)
	if ch, err := h.svc.GetMeetingChannel(ctx, meetingID, user.ID); err == nil && ch != nil {
		response["channel_id"] = ch.ID
	}
	c.JSON(http.StatusOK, gin.H{"meeting": response})
}

// JoinMeeting returns the session name the client connects the media
// session with.
func (h *MeetingHandler) JoinMeeting(c *gin.Context) {
	user := middleware.CurrentUser(c)
	meetingID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	session, err := h.svc.JoinMeeting(ctx, meetingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.presence != nil {
		if err := h.presence.Heartbeat(ctx, meetingID, user.ID); err != nil {
			log.Warn().Err(err).Str("meeting_id", meetingID.String()).Msg("presence heartbeat")
		}
	}

	c.JSON(http.StatusOK, gin.H{"session_name": session})
}

func (h *MeetingHandler) LeaveMeeting(c *gin.Context) {
	user := middleware.CurrentUser(c)
	meetingID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	manifest, err := h.svc.LeaveMeeting(ctx, meetingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.presence != nil {
		if err := h.presence.Release(ctx, meetingID, user.ID); err != nil {
			log.Warn().Err(err).Str("meeting_id", meetingID.String()).Msg("presence release")
		}
	}
	h.released(ctx, meetingID, manifest)

	c.JSON(http.StatusOK, gin.H{"ended": len(manifest.SessionIDs) > 0, "session_ids": manifest.SessionIDs})
}

func (h *MeetingHandler) EndMeeting(c *gin.Context) {
	h.end(c, h.svc.EndMeeting)
}

func (h *MeetingHandler) ForceEndMeeting(c *gin.Context) {
	h.end(c, h.svc.ForceEndMeeting)
}

func (h *MeetingHandler) end(c *gin.Context, op func(ctx context.Context, meetingID, callerID uuid.UUID) (*services.Manifest, error)) {
	user := middleware.CurrentUser(c)
	meetingID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	manifest, err := op(ctx, meetingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.released(ctx, meetingID, manifest)

	c.JSON(http.StatusOK, manifest)
}

// Heartbeat renews the caller's presence lease on a meeting.
func (h *MeetingHandler) Heartbeat(c *gin.Context) {
	user := middleware.CurrentUser(c)
	meetingID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.svc.AuthorizeMeeting(ctx, meetingID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	if h.presence == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.presence.Heartbeat(ctx, meetingID, user.ID); err != nil {
		log.Error().Err(err).Str("meeting_id", meetingID.String()).Msg("presence heartbeat")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MeetingHandler) released(ctx context.Context, meetingID uuid.UUID, manifest *services.Manifest) {
	if len(manifest.SessionIDs) == 0 {
		return
	}
	h.teardown.Apply(manifest)
	if h.presence != nil {
		if err := h.presence.Forget(ctx, meetingID); err != nil {
			log.Warn().Err(err).Str("meeting_id", meetingID.String()).Msg("presence forget")
		}
	}
}
