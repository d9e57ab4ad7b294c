package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/taleemhub/school-admin-api/internal/service"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
	"github.com/taleemhub/school-admin-api/pkg/response"
	"github.com/taleemhub/school-admin-api/pkg/storage"
)

// ExportHandler renders exports and serves them behind signed download links.
type ExportHandler struct {
	exports *service.ExportService
	files   *storage.FileStore
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, files *storage.FileStore) *ExportHandler {
	return &ExportHandler{exports: exports, files: files}
}

// AttendancePDFRequest names the subjects to include in the export.
type AttendancePDFRequest struct {
	SubjectIDs []string `json:"subject_ids"`
}

// AttendancePDF godoc
// @Summary Render an attendance summary PDF
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body AttendancePDFRequest true "Subjects"
// @Success 200 {object} response.Envelope
// @Router /exports/attendance [post]
func (h *ExportHandler) AttendancePDF(c *gin.Context) {
	var req AttendancePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.exports.AttendancePDF(c.Request.Context(), req.SubjectIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download an export by signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	relPath, err := h.exports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileName := filepath.Base(relPath)
	file, err := h.files.Open(fileName)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close()

	c.FileAttachment(file.Name(), fileName)
}
