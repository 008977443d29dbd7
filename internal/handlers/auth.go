package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/middleware"
	"github.com/thereayou/vbase/pkg/auth"
)

type AuthHandler struct {
	jwtManager *auth.JWTManager
	blacklist  auth.Blacklist
}

func NewAuthHandler(jwtMgr *auth.JWTManager, blacklist auth.Blacklist) *AuthHandler {
	return &AuthHandler{jwtManager: jwtMgr, blacklist: blacklist}
}

// Me returns the caller's user record and the organization claims it was
// resolved from.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	identity := middleware.CurrentIdentity(c)

	response := formatUser(user)
	response["org_id"] = identity.OrgID
	response["org_role"] = identity.OrgRole
	response["org_slug"] = identity.OrgSlug
	c.JSON(http.StatusOK, response)
}

// Logout revokes the caller's token until it would have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken := c.MustGet(middleware.TokenKey).(string)

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.blacklist.Revoke(c.Request.Context(), rawToken, time.Until(exp)); err != nil {
		log.Error().Err(err).Msg("revoke token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not revoke token"})
		return
	}

	c.Status(http.StatusNoContent)
}
