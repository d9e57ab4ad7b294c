package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type contentRepository interface {
	ListBlogs(ctx context.Context) ([]models.Blog, error)
	FindBlog(ctx context.Context, id string) (*models.Blog, error)
	CreateBlog(ctx context.Context, blog *models.Blog) error
	UpdateBlog(ctx context.Context, blog *models.Blog) error
	DeleteBlog(ctx context.Context, id string) error
	ListAds(ctx context.Context) ([]models.Ad, error)
	FindAd(ctx context.Context, id string) (*models.Ad, error)
	CreateAd(ctx context.Context, ad *models.Ad) error
	UpdateAd(ctx context.Context, ad *models.Ad) error
	DeleteAd(ctx context.Context, id string) error
	GetMiningRate(ctx context.Context) (*models.MiningRate, error)
	SetMiningRate(ctx context.Context, rate *models.MiningRate) error
}

// SaveBlogRequest holds payload for creating or updating a blog post.
type SaveBlogRequest struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	ImageURL string `json:"image_url"`
}

// SaveAdRequest holds payload for creating or updating an advertisement.
type SaveAdRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImageURL    string `json:"image_url"`
	TargetURL   string `json:"target_url" validate:"omitempty,url"`
	Active      bool   `json:"active"`
}

// SetMiningRateRequest sets the hourly coin accrual rate.
type SetMiningRateRequest struct {
	CoinsPerHour float64 `json:"coins_per_hour" validate:"gte=0"`
}

// ContentService handles blogs, ads and the mining-rate setting.
type ContentService struct {
	repo      contentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs the content service.
func NewContentService(repo contentRepository, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{repo: repo, validator: validate, logger: logger}
}

// ListBlogs returns all blog posts.
func (s *ContentService) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	blogs, err := s.repo.ListBlogs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list blogs")
	}
	return blogs, nil
}

// GetBlog returns a single blog post.
func (s *ContentService) GetBlog(ctx context.Context, id string) (*models.Blog, error) {
	blog, err := s.repo.FindBlog(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load blog")
	}
	return blog, nil
}

// CreateBlog publishes a blog post.
func (s *ContentService) CreateBlog(ctx context.Context, req SaveBlogRequest) (*models.Blog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid blog payload")
	}
	blog := &models.Blog{
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
		ImageURL: req.ImageURL,
	}
	if err := s.repo.CreateBlog(ctx, blog); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create blog")
	}
	return blog, nil
}

// UpdateBlog modifies an existing blog post.
func (s *ContentService) UpdateBlog(ctx context.Context, id string, req SaveBlogRequest) (*models.Blog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid blog payload")
	}
	blog, err := s.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	blog.Title = strings.TrimSpace(req.Title)
	blog.Body = req.Body
	if req.ImageURL != "" {
		blog.ImageURL = req.ImageURL
	}
	if err := s.repo.UpdateBlog(ctx, blog); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update blog")
	}
	return blog, nil
}

// DeleteBlog removes a blog post.
func (s *ContentService) DeleteBlog(ctx context.Context, id string) error {
	if _, err := s.GetBlog(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteBlog(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete blog")
	}
	return nil
}

// ListAds returns all advertisements.
func (s *ContentService) ListAds(ctx context.Context) ([]models.Ad, error) {
	ads, err := s.repo.ListAds(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list ads")
	}
	return ads, nil
}

// GetAd returns a single advertisement.
func (s *ContentService) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	ad, err := s.repo.FindAd(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ad not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load ad")
	}
	return ad, nil
}

// CreateAd publishes an advertisement.
func (s *ContentService) CreateAd(ctx context.Context, req SaveAdRequest) (*models.Ad, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ad payload")
	}
	ad := &models.Ad{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		TargetURL:   req.TargetURL,
		Active:      req.Active,
	}
	if err := s.repo.CreateAd(ctx, ad); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create ad")
	}
	return ad, nil
}

// UpdateAd modifies an existing advertisement.
func (s *ContentService) UpdateAd(ctx context.Context, id string, req SaveAdRequest) (*models.Ad, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ad payload")
	}
	ad, err := s.GetAd(ctx, id)
	if err != nil {
		return nil, err
	}
	ad.Title = strings.TrimSpace(req.Title)
	ad.Description = req.Description
	ad.Active = req.Active
	if req.ImageURL != "" {
		ad.ImageURL = req.ImageURL
	}
	if req.TargetURL != "" {
		ad.TargetURL = req.TargetURL
	}
	if err := s.repo.UpdateAd(ctx, ad); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update ad")
	}
	return ad, nil
}

// DeleteAd removes an advertisement.
func (s *ContentService) DeleteAd(ctx context.Context, id string) error {
	if _, err := s.GetAd(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteAd(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete ad")
	}
	return nil
}

// GetMiningRate returns the hourly coin accrual rate, zero when never set.
func (s *ContentService) GetMiningRate(ctx context.Context) (*models.MiningRate, error) {
	rate, err := s.repo.GetMiningRate(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load mining rate")
	}
	return rate, nil
}

// SetMiningRate overwrites the hourly coin accrual rate.
func (s *ContentService) SetMiningRate(ctx context.Context, req SetMiningRateRequest, updatedBy string) (*models.MiningRate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mining rate payload")
	}
	rate := &models.MiningRate{
		ID:           models.MiningRateDocID,
		CoinsPerHour: req.CoinsPerHour,
		UpdatedAt:    time.Now().UTC(),
		UpdatedBy:    updatedBy,
	}
	if err := s.repo.SetMiningRate(ctx, rate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save mining rate")
	}
	return rate, nil
}
