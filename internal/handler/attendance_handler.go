package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taleemhub/school-admin-api/internal/service"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
	"github.com/taleemhub/school-admin-api/pkg/response"
)

// AttendanceHandler exposes the attendance register endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// Mark godoc
// @Summary Mark attendance for one or more subjects on a date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkRequest true "Marks"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Router /attendance/mark [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.attendance.Mark(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordAttendanceMarks(len(req.Marks))
	response.NoContent(c)
}

// EditEntry godoc
// @Summary Revise a subject's entry for a date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Param payload body service.EditEntryRequest true "Revised entry"
// @Success 200 {object} response.Envelope
// @Router /attendance/{subjectId}/entries [put]
func (h *AttendanceHandler) EditEntry(c *gin.Context) {
	var req service.EditEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	sheet, err := h.attendance.EditEntry(c.Request.Context(), c.Param("subjectId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordAttendanceMarks(1)
	response.JSON(c, http.StatusOK, sheet, nil)
}

// History godoc
// @Summary Full attendance history of a subject, optionally bounded by date
// @Tags Attendance
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{subjectId} [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	subjectID := c.Param("subjectId")
	from := c.Query("from")
	to := c.Query("to")

	if from != "" || to != "" {
		entries, err := h.attendance.Range(c.Request.Context(), subjectID, from, to)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, entries, nil)
		return
	}

	entries, err := h.attendance.History(c.Request.Context(), subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Summary godoc
// @Summary Aggregate a subject's attendance, optionally scoped to the current month or a range
// @Tags Attendance
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Param month query string false "Pass 'current' to scope to this month"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{subjectId}/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	subjectID := c.Param("subjectId")

	from := c.Query("from")
	to := c.Query("to")
	switch {
	case from != "" || to != "":
		filtered, rangeErr := h.attendance.Range(c.Request.Context(), subjectID, from, to)
		if rangeErr != nil {
			response.Error(c, rangeErr)
			return
		}
		response.JSON(c, http.StatusOK, service.Aggregate(filtered), nil)
	case c.Query("month") == "current":
		history, histErr := h.attendance.History(c.Request.Context(), subjectID)
		if histErr != nil {
			response.Error(c, histErr)
			return
		}
		response.JSON(c, http.StatusOK, service.Aggregate(service.CurrentMonth(history, time.Now())), nil)
	default:
		history, histErr := h.attendance.History(c.Request.Context(), subjectID)
		if histErr != nil {
			response.Error(c, histErr)
			return
		}
		response.JSON(c, http.StatusOK, service.Aggregate(history), nil)
	}
}
