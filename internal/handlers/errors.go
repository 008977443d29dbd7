package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/services"
)

var kindStatus = map[services.Kind]int{
	services.KindUnauthenticated:  http.StatusUnauthorized,
	services.KindForbidden:        http.StatusForbidden,
	services.KindNotFound:         http.StatusNotFound,
	services.KindInvalidState:     http.StatusUnprocessableEntity,
	services.KindCapacityExceeded: http.StatusConflict,
	services.KindConflict:         http.StatusConflict,
}

// respondError writes a service error with its kind's status. Anything
// else is logged and reported as an internal error.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error(), "kind": kind}
	var e *services.Error
	if errors.As(err, &e) && e.Reason != "" {
		body["reason"] = e.Reason
	}
	c.JSON(status, body)
}

// paramUUID parses a path parameter, answering 400 when it is malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
