package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taleemhub/school-admin-api/internal/service"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
	"github.com/taleemhub/school-admin-api/pkg/response"
)

// ExamHandler exposes exam-result endpoints.
type ExamHandler struct {
	exams   *service.ExamService
	exports *service.ExportService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams *service.ExamService, exports *service.ExportService) *ExamHandler {
	return &ExamHandler{exams: exams, exports: exports}
}

// List godoc
// @Summary List exam results
// @Tags Exams
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param classId query string false "Filter by class"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	results, err := h.exams.List(c.Request.Context(), c.Query("studentId"), c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Get godoc
// @Summary Get an exam result
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	result, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Record an exam result
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.SaveExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.SaveExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.exams.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update an exam result
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body service.SaveExamRequest true "Exam payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var req service.SaveExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.exams.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete an exam result
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 204 "No Content"
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.exams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV godoc
// @Summary Export exam results as CSV
// @Tags Exams
// @Produce json
// @Param classId query string false "Scope to a class"
// @Success 200 {object} response.Envelope
// @Router /exams/export [post]
func (h *ExamHandler) ExportCSV(c *gin.Context) {
	result, err := h.exports.ExamsCSV(c.Request.Context(), c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
