package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taleemhub/school-admin-api/pkg/config"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
	"github.com/taleemhub/school-admin-api/pkg/response"
	"github.com/taleemhub/school-admin-api/pkg/storage"
)

// UploadHandler accepts multipart image uploads and serves them back by
// public URL.
type UploadHandler struct {
	files *storage.FileStore
	cfg   config.UploadsConfig
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(files *storage.FileStore, cfg config.UploadsConfig) *UploadHandler {
	return &UploadHandler{files: files, cfg: cfg}
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// Upload godoc
// @Summary Upload an image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file field is required"))
		return
	}
	if h.cfg.MaxSizeBytes > 0 && fileHeader.Size > h.cfg.MaxSizeBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte limit", h.cfg.MaxSizeBytes)))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !h.allowedMIME(contentType) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("content type %q is not allowed", contentType)))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	fileName := uuid.NewString() + ext
	if _, err := h.files.SaveStream(fileName, src); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
		return
	}

	result := UploadResult{FileName: fileName, URL: h.files.PublicURL(fileName)}
	response.JSON(c, http.StatusCreated, result, nil)
}

// Delete godoc
// @Summary Delete an uploaded file
// @Tags Uploads
// @Produce json
// @Param name path string true "File name"
// @Success 204 "No Content"
// @Router /uploads/{name} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	if err := h.files.Delete(name); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete upload"))
		return
	}
	response.NoContent(c)
}

func (h *UploadHandler) allowedMIME(contentType string) bool {
	if len(h.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}
