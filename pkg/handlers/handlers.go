package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arnavshah/stable-scheduler-go/pkg/auth"
	"github.com/arnavshah/stable-scheduler-go/pkg/database"
	"github.com/arnavshah/stable-scheduler-go/pkg/ingest"
	"github.com/arnavshah/stable-scheduler-go/pkg/metrics"
	"github.com/arnavshah/stable-scheduler-go/pkg/models"
	"github.com/arnavshah/stable-scheduler-go/pkg/scheduler"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB      *gorm.DB
	Auth    *auth.Authenticator
	Metrics *metrics.Recorder
	// Planning is the base configuration every request starts from
	Planning models.PlanningOptions
	Logger   zerolog.Logger
	parser   *ingest.Parser
}

// New creates a Handler. planning overrides the built-in defaults.
func New(db *gorm.DB, authenticator *auth.Authenticator, recorder *metrics.Recorder, planning models.PlanningOptions, logger zerolog.Logger) *Handler {
	logger = logger.With().Str("component", "http").Logger()
	return &Handler{
		DB:       db,
		Auth:     authenticator,
		Metrics:  recorder,
		Planning: scheduler.MergeOptions(scheduler.DefaultOptions(), &planning),
		Logger:   logger,
		parser:   ingest.NewParser(logger),
	}
}

// inputError reports whether err was caused by the request data
func inputError(err error) bool {
	return errors.Is(err, scheduler.ErrInvalidHorse) ||
		errors.Is(err, scheduler.ErrDuplicateHorse) ||
		errors.Is(err, scheduler.ErrUnknownHorse) ||
		errors.Is(err, scheduler.ErrUnknownDay)
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// ScheduleJSON handles the JSON-based scheduling request
func (h *Handler) ScheduleJSON(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.schedule(c, input)
}

// csvFields are the multipart fields of ScheduleCSV
var csvFields = []string{"horses_file", "skills_file", "friends_file", "active_courses_file", "passive_courses_file"}

// ScheduleCSV handles semicolon-delimited table uploads for scheduling. An
// optional "options" field carries planning options as JSON.
func (h *Handler) ScheduleCSV(c *gin.Context) {
	files := make(map[string]multipart.File, len(csvFields))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, field := range csvFields {
		header, err := c.FormFile(field)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is required", field)})
			return
		}
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open " + field})
			return
		}
		files[field] = f
	}

	input, err := h.parser.Parse(ingest.Sources{
		Horses:         files["horses_file"],
		Skills:         files["skills_file"],
		Friendships:    files["friends_file"],
		ActiveCourses:  files["active_courses_file"],
		PassiveCourses: files["passive_courses_file"],
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if raw := c.PostForm("options"); raw != "" {
		var opts models.PlanningOptions
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid options: " + err.Error()})
			return
		}
		input.Options = &opts
	}

	h.schedule(c, input)
}

// schedule generates, persists and returns a week
func (h *Handler) schedule(c *gin.Context, input models.ScheduleInput) {
	start := time.Now()
	resp, err := scheduler.NewScheduler(input, h.Planning, h.Logger).Generate()
	if err != nil {
		h.Metrics.RecordFailure(time.Since(start))
		status := http.StatusInternalServerError
		if inputError(err) {
			status = http.StatusBadRequest
		} else {
			h.Logger.Error().Err(err).Msg("schedule generation failed")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.Metrics.RecordRun(resp, time.Since(start))

	var keyID *uint
	if apiKey := currentKey(c); apiKey != nil {
		keyID = &apiKey.ID
	}
	run, err := database.NewRun(resp, keyID)
	if err == nil {
		err = database.SaveRun(h.DB, run)
	}
	if err != nil {
		h.Logger.Error().Err(err).Msg("could not store run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store run"})
		return
	}
	resp.RunID = run.ID

	h.RecordUsage(c, len(input.Horses), len(input.ActiveCourses)+len(input.PassiveCourses))
	c.JSON(http.StatusOK, resp)
}

// RecordUsage records API usage for the calling key
func (h *Handler) RecordUsage(c *gin.Context, horseCount, courseCount int) {
	apiKey := currentKey(c)
	if apiKey == nil {
		return
	}
	if err := database.RecordUsage(h.DB, apiKey.ID, horseCount, courseCount, time.Now()); err != nil {
		h.Logger.Warn().Err(err).Uint("key_id", apiKey.ID).Msg("could not record usage")
	}
}

func currentKey(c *gin.Context) *database.APIKey {
	raw, exists := c.Get("apiKey")
	if !exists {
		return nil
	}
	apiKey, _ := raw.(*database.APIKey)
	return apiKey
}
