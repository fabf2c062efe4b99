package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/stable-scheduler-go/pkg/database"
	"github.com/arnavshah/stable-scheduler-go/pkg/export"
	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// loadRun fetches a run owned by the calling key and writes the error
// response itself when it cannot
func (h *Handler) loadRun(c *gin.Context) (*database.Run, *models.ScheduleResponse, bool) {
	var keyID *uint
	if apiKey := currentKey(c); apiKey != nil {
		keyID = &apiKey.ID
	}

	run, err := database.GetRun(h.DB, c.Param("id"), keyID)
	if errors.Is(err, database.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load run"})
		return nil, nil, false
	}

	resp, err := run.Response()
	if err != nil {
		h.Logger.Error().Err(err).Str("run_id", run.ID).Msg("stored run is unreadable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load run"})
		return nil, nil, false
	}
	return run, resp, true
}

// GetRun returns a stored week
func (h *Handler) GetRun(c *gin.Context) {
	_, resp, ok := h.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportRun downloads a stored week as a text report (format=txt, the
// default) or a workbook (format=xlsx)
func (h *Handler) ExportRun(c *gin.Context) {
	format := c.DefaultQuery("format", "txt")
	if format != "txt" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be txt or xlsx"})
		return
	}

	run, resp, ok := h.loadRun(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	contentType := "text/plain; charset=utf-8"
	var err error
	if format == "xlsx" {
		contentType = xlsxContentType
		err = export.WriteXLSX(&buf, resp)
	} else {
		err = export.WriteText(&buf, resp, run.CreatedAt)
	}
	if err != nil {
		h.Logger.Error().Err(err).Str("run_id", run.ID).Msg("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not export run"})
		return
	}

	filename := "stable_schedule_" + run.CreatedAt.Format("20060102_150405") + "." + format
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
