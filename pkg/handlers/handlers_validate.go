package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
	"github.com/arnavshah/stable-scheduler-go/pkg/scheduler"
)

// ValidateInput checks a JSON scheduling request without generating
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Horses) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one horse is required",
		})
		return
	}

	s := scheduler.NewScheduler(input, h.Planning, h.Logger)
	if err := s.Validate(); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"horse_count":          len(input.Horses),
			"active_course_count":  len(input.ActiveCourses),
			"passive_course_count": len(input.PassiveCourses),
			"active_days":          s.Options.ActiveDays,
		},
	})
}
