package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type profileRepository interface {
	List(ctx context.Context) ([]models.Profile, error)
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileSessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

// CreateProfileRequest holds payload for enrolling a user.
type CreateProfileRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          string  `json:"phone" validate:"required,min=7"`
	HourlyRate     float64 `json:"hourly_rate" validate:"gte=0"`
	ReferralCode   string  `json:"referral_code" validate:"required,min=3"`
	ReferralByCode string  `json:"referral_by_code"`
	ImageURL       string  `json:"image_url"`
}

// UpdateProfileRequest holds the mutable, non-referral profile fields.
type UpdateProfileRequest struct {
	Name       string  `json:"name" validate:"required"`
	Phone      string  `json:"phone" validate:"required,min=7"`
	Coins      float64 `json:"coins" validate:"gte=0"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
	ImageURL   string  `json:"image_url"`
}

// ProfileService handles user profile use-cases. Referral linkage and every
// referralCount mutation are delegated to the referral ledger.
type ProfileService struct {
	repo      profileRepository
	referrals *ReferralService
	sessions  profileSessionRevoker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(repo profileRepository, referrals *ReferralService, sessions profileSessionRevoker, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, referrals: referrals, sessions: sessions, validator: validate, logger: logger}
}

// List returns one page of profiles. The store has no cursor support, so
// pagination slices the fetched list.
func (s *ProfileService) List(ctx context.Context, page, pageSize int) ([]models.Profile, *models.Pagination, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list profiles")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	total := len(profiles)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	pageItems := make([]models.Profile, 0, end-start)
	for _, profile := range profiles[start:end] {
		pageItems = append(pageItems, profile.Public())
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return pageItems, pagination, nil
}

// Get returns a single profile.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load profile")
	}
	public := profile.Public()
	return &public, nil
}

// Create enrolls a user. Uniqueness checks and referral linkage happen inside
// the referral ledger; a create with an unknown referral code is rejected
// before any document is written.
func (s *ProfileService) Create(ctx context.Context, req CreateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile := &models.Profile{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Role:           models.RoleMember,
		HourlyRate:     req.HourlyRate,
		ReferralCode:   strings.TrimSpace(req.ReferralCode),
		ReferralByCode: strings.TrimSpace(req.ReferralByCode),
		ImageURL:       req.ImageURL,
	}
	if err := s.referrals.Register(ctx, profile); err != nil {
		return nil, err
	}
	public := profile.Public()
	return &public, nil
}

// Update modifies the non-referral fields of a profile.
func (s *ProfileService) Update(ctx context.Context, id string, req UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load profile")
	}
	profile.Name = strings.TrimSpace(req.Name)
	profile.Phone = strings.TrimSpace(req.Phone)
	profile.Coins = req.Coins
	profile.HourlyRate = req.HourlyRate
	if req.ImageURL != "" {
		profile.ImageURL = req.ImageURL
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update profile")
	}
	public := profile.Public()
	return &public, nil
}

// Delete removes a profile through the referral ledger so every referral
// side effect lands in the same batch as the deletion. Any open sessions of
// the deleted profile are revoked afterwards; a revocation failure does not
// undo the deletion since the session's owner no longer exists.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if err := s.referrals.RemoveUser(ctx, id); err != nil {
		return err
	}
	if s.sessions != nil {
		if err := s.sessions.RevokeUser(ctx, id); err != nil {
			s.logger.Warn("failed to revoke sessions of deleted profile",
				zap.String("profile_id", id), zap.Error(err))
		}
	}
	return nil
}

// Unlink severs the profile's referral edge without deleting it.
func (s *ProfileService) Unlink(ctx context.Context, id string) error {
	return s.referrals.Unlink(ctx, id)
}
