package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/auralab/auralab/internal/adapters/http"
	wssignal "github.com/auralab/auralab/internal/adapters/signal"
	"github.com/auralab/auralab/internal/app"
	"github.com/auralab/auralab/internal/app/orch"
	"github.com/auralab/auralab/internal/config"
	"github.com/auralab/auralab/internal/core"
	"github.com/auralab/auralab/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var data store.DataContext
	if cfg.Mode == "local" {
		data = store.NewMemory().Context()
		log.Info().Msg("using in-memory store")
	} else {
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := store.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB)
		connectCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect store")
		}
		data = store.NewMongo(db)
	}

	orchestrator := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Lobbies:  core.NewLobbyManager(cfg.MaxSlots),
	}
	limiter := wssignal.NewJoinRateLimiter(cfg.JoinLimit, cfg.JoinInterval)
	ctl := wssignal.NewLobbyWSController(orchestrator, limiter, cfg.ReadLimit)
	registrar := &app.Registrar{Data: data}
	migrator := &app.Migrator{Data: data}

	r := router.SetupRouter(ctx, cfg, ctl, registrar, migrator)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("auralab server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
