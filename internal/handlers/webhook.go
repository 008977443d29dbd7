package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/handlers/dto"
	"github.com/thereayou/vbase/internal/services"
)

const (
	eventUserCreated = "user.created"
	eventUserUpdated = "user.updated"
	eventUserDeleted = "user.deleted"
)

// WebhookHandler applies identity provider user events. Both operations are
// idempotent, so redelivered events are harmless.
type WebhookHandler struct {
	svc *services.Service
}

func NewWebhookHandler(svc *services.Service) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func (h *WebhookHandler) HandleIdentityEvent(c *gin.Context) {
	var event dto.IdentityEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if event.Data.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user id"})
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case eventUserCreated, eventUserUpdated:
		name := strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName)
		if name == "" {
			name = event.Data.Username
		}
		if _, err := h.svc.UpsertUserFromWebhook(ctx, event.Data.ID, name, event.Data.PrimaryEmail()); err != nil {
			respondError(c, err)
			return
		}

	case eventUserDeleted:
		if err := h.svc.DeleteUserByExternalID(ctx, event.Data.ID); err != nil {
			respondError(c, err)
			return
		}

	default:
		log.Debug().Str("type", event.Type).Msg("ignoring identity event")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
