package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/arnavshah/stable-scheduler-go/pkg/auth"
	"github.com/arnavshah/stable-scheduler-go/pkg/config"
	"github.com/arnavshah/stable-scheduler-go/pkg/database"
	"github.com/arnavshah/stable-scheduler-go/pkg/handlers"
	"github.com/arnavshah/stable-scheduler-go/pkg/logging"
	"github.com/arnavshah/stable-scheduler-go/pkg/metrics"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.Setup(cfg.Environment)
	if err := cfg.Auth.RequireSecrets(); err != nil {
		logger.Fatal().Err(err).Msg("missing secrets")
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}
	a := auth.New(cfg.Auth)
	if err := a.EnsureAdminExists(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, logger); err != nil {
		logger.Error().Err(err).Msg("could not create admin user")
	}
	recorder, err := metrics.NewRecorder(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("metrics")
	}

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(handlers.New(db, a, recorder, cfg.Planning, logger))
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
