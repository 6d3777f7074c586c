package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/app"
	"github.com/auralab/auralab/internal/identity"
)

type UserHandlers struct {
	Registrar *app.Registrar
	Migrator  *app.Migrator
}

type userIDPayload struct {
	Token string `json:"token" binding:"required"`
}

// Register creates a new account for the id in the body.
func (h *UserHandlers) Register(c *gin.Context) {
	var body userIDPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Bad Request"})
		return
	}
	if err := h.Registrar.Register(c.Request.Context(), body.Token); err != nil {
		writeUserError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Migrate merges the authenticated account (X-Token header) into the
// account named in the body, then deletes the source.
func (h *UserHandlers) Migrate(c *gin.Context) {
	source := c.GetHeader("X-Token")
	if source == "" {
		c.JSON(http.StatusForbidden, gin.H{"detail": "X-Token header missing"})
		return
	}
	var body userIDPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Bad Request"})
		return
	}
	if err := h.Migrator.Migrate(c.Request.Context(), source, body.Token); err != nil {
		writeUserError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidIdentity):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Bad Request"})
	case errors.Is(err, app.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("user request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
	}
}
