package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taleemhub/school-admin-api/internal/middleware"
	"github.com/taleemhub/school-admin-api/internal/service"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
	"github.com/taleemhub/school-admin-api/pkg/response"
)

// ContentHandler exposes blog, ad and mining-rate endpoints.
type ContentHandler struct {
	content *service.ContentService
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// ListBlogs godoc
// @Summary List blog posts
// @Tags Blogs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blogs [get]
func (h *ContentHandler) ListBlogs(c *gin.Context) {
	blogs, err := h.content.ListBlogs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blogs, nil)
}

// GetBlog godoc
// @Summary Get a blog post
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} response.Envelope
// @Router /blogs/{id} [get]
func (h *ContentHandler) GetBlog(c *gin.Context) {
	blog, err := h.content.GetBlog(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// CreateBlog godoc
// @Summary Publish a blog post
// @Tags Blogs
// @Accept json
// @Produce json
// @Param payload body service.SaveBlogRequest true "Blog payload"
// @Success 201 {object} response.Envelope
// @Router /blogs [post]
func (h *ContentHandler) CreateBlog(c *gin.Context) {
	var req service.SaveBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	blog, err := h.content.CreateBlog(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, blog)
}

// UpdateBlog godoc
// @Summary Update a blog post
// @Tags Blogs
// @Accept json
// @Produce json
// @Param id path string true "Blog ID"
// @Param payload body service.SaveBlogRequest true "Blog payload"
// @Success 200 {object} response.Envelope
// @Router /blogs/{id} [put]
func (h *ContentHandler) UpdateBlog(c *gin.Context) {
	var req service.SaveBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	blog, err := h.content.UpdateBlog(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// DeleteBlog godoc
// @Summary Delete a blog post
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 204 "No Content"
// @Router /blogs/{id} [delete]
func (h *ContentHandler) DeleteBlog(c *gin.Context) {
	if err := h.content.DeleteBlog(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAds godoc
// @Summary List advertisements
// @Tags Ads
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ads [get]
func (h *ContentHandler) ListAds(c *gin.Context) {
	ads, err := h.content.ListAds(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ads, nil)
}

// GetAd godoc
// @Summary Get an advertisement
// @Tags Ads
// @Produce json
// @Param id path string true "Ad ID"
// @Success 200 {object} response.Envelope
// @Router /ads/{id} [get]
func (h *ContentHandler) GetAd(c *gin.Context) {
	ad, err := h.content.GetAd(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ad, nil)
}

// CreateAd godoc
// @Summary Publish an advertisement
// @Tags Ads
// @Accept json
// @Produce json
// @Param payload body service.SaveAdRequest true "Ad payload"
// @Success 201 {object} response.Envelope
// @Router /ads [post]
func (h *ContentHandler) CreateAd(c *gin.Context) {
	var req service.SaveAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	ad, err := h.content.CreateAd(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ad)
}

// UpdateAd godoc
// @Summary Update an advertisement
// @Tags Ads
// @Accept json
// @Produce json
// @Param id path string true "Ad ID"
// @Param payload body service.SaveAdRequest true "Ad payload"
// @Success 200 {object} response.Envelope
// @Router /ads/{id} [put]
func (h *ContentHandler) UpdateAd(c *gin.Context) {
	var req service.SaveAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	ad, err := h.content.UpdateAd(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ad, nil)
}

// DeleteAd godoc
// @Summary Delete an advertisement
// @Tags Ads
// @Produce json
// @Param id path string true "Ad ID"
// @Success 204 "No Content"
// @Router /ads/{id} [delete]
func (h *ContentHandler) DeleteAd(c *gin.Context) {
	if err := h.content.DeleteAd(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetMiningRate godoc
// @Summary Get the hourly coin accrual rate
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/mining-rate [get]
func (h *ContentHandler) GetMiningRate(c *gin.Context) {
	rate, err := h.content.GetMiningRate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rate, nil)
}

// SetMiningRate godoc
// @Summary Overwrite the hourly coin accrual rate
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.SetMiningRateRequest true "Rate payload"
// @Success 200 {object} response.Envelope
// @Router /settings/mining-rate [put]
func (h *ContentHandler) SetMiningRate(c *gin.Context) {
	var req service.SetMiningRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	updatedBy := ""
	if claims := middleware.CurrentClaims(c); claims != nil {
		updatedBy = claims.UserID
	}
	rate, err := h.content.SetMiningRate(c.Request.Context(), req, updatedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rate, nil)
}
