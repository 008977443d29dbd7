package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/models"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/pkg/auth"
)

const (
	IdentityKey = "identity"
	UserKey     = "user"
	TokenKey    = "token"
)

// AuthMiddleware verifies the bearer token, rejects revoked tokens and
// resolves the caller's user record.
func AuthMiddleware(jwtManager *auth.JWTManager, blacklist auth.Blacklist, svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		authenticate(c, token, jwtManager, blacklist, svc)
	}
}

// WSAuthMiddleware also accepts the token as a query parameter, since
// browsers cannot set headers on websocket upgrades.
func WSAuthMiddleware(jwtManager *auth.JWTManager, blacklist auth.Blacklist, svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		authenticate(c, token, jwtManager, blacklist, svc)
	}
}

func authenticate(c *gin.Context, token string, jwtManager *auth.JWTManager, blacklist auth.Blacklist, svc *services.Service) {
	revoked, err := blacklist.IsRevoked(c.Request.Context(), token)
	if err != nil || revoked {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is revoked"})
		return
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	identity := &services.Identity{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		OrgID:   claims.OrgID,
		OrgRole: claims.OrgRole,
		OrgSlug: claims.OrgSlug,
	}

	user, err := svc.EnsureUser(c.Request.Context(), identity)
	if err != nil {
		log.Error().Err(err).Str("subject", claims.Subject).Msg("ensure user")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not resolve user"})
		return
	}

	c.Set(TokenKey, token)
	c.Set(IdentityKey, identity)
	c.Set(UserKey, user)
	c.Next()
}

func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(UserKey).(*models.User)
}

func CurrentIdentity(c *gin.Context) *services.Identity {
	return c.MustGet(IdentityKey).(*services.Identity)
}
