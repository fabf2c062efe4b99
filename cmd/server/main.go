package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/stable-scheduler-go/pkg/auth"
	"github.com/arnavshah/stable-scheduler-go/pkg/config"
	"github.com/arnavshah/stable-scheduler-go/pkg/database"
	"github.com/arnavshah/stable-scheduler-go/pkg/handlers"
	"github.com/arnavshah/stable-scheduler-go/pkg/logging"
	"github.com/arnavshah/stable-scheduler-go/pkg/metrics"
)

func main() {
	cfg, err := config.Load(os.Getenv("STABLE_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Environment)

	if err := cfg.Auth.RequireSecrets(); err != nil {
		logger.Fatal().Err(err).Msg("missing secrets")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}
	a := auth.New(cfg.Auth)
	if err := a.EnsureAdminExists(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, logger); err != nil {
		logger.Fatal().Err(err).Msg("could not create admin user")
	}
	recorder, err := metrics.NewRecorder(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("metrics")
	}

	h := handlers.New(db, a, recorder, cfg.Planning, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("could not run server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
