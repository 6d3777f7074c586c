package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/adapters/signal"
	"github.com/auralab/auralab/internal/app"
	"github.com/auralab/auralab/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware assigns every browser a stable connection id via
// the ct cookie; the lobby subsystem keys sessions by it.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.LobbyWSController, reg *app.Registrar, mig *app.Migrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("AuralabSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	user := &UserHandlers{Registrar: reg, Migrator: mig}
	api.PUT("/user/register", user.Register)
	api.PUT("/user/migrate", user.Migrate)

	api.GET("/lobbies", func(c *gin.Context) {
		c.JSON(200, ctl.Orch.Lobbies.List())
	})

	api.GET("/ws/lobby", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws lobby endpoint hit")
		ctl.HandleLobby(ctx, c)
	})

	return r
}
