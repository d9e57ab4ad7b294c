package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type referralProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindByReferralCode(ctx context.Context, code string) (*models.Profile, error)
	ListReferredBy(ctx context.Context, code string) ([]models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	CreateLinked(ctx context.Context, profile *models.Profile, referrerID string, referrerCount int) error
	DeleteCascade(ctx context.Context, id, referrerID string, referrerCount int, severedIDs []string) error
	Unlink(ctx context.Context, referredID, referrerID string, referrerCount int) error
}

type referralMetricsRecorder interface {
	RecordReferralMutation(kind string)
}

// ReferralService is the single owner of the referrer/referred relationship
// and of every mutation to the denormalized referralCount. The count is
// symmetric: incremented when a link is created, decremented when it is
// severed, so it always equals the number of profiles whose referrerID
// points at the referrer.
type ReferralService struct {
	profiles referralProfileRepository
	metrics  referralMetricsRecorder
	logger   *zap.Logger
}

// NewReferralService constructs the referral ledger.
func NewReferralService(profiles referralProfileRepository, metrics referralMetricsRecorder, logger *zap.Logger) *ReferralService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferralService{profiles: profiles, metrics: metrics, logger: logger}
}

func (s *ReferralService) recordMutation(kind string) {
	if s.metrics != nil {
		s.metrics.RecordReferralMutation(kind)
	}
}

// Resolve returns the profile owning the referral code. The match is
// case-sensitive and exact; a miss is a REFERENCE_NOT_FOUND error.
func (s *ReferralService) Resolve(ctx context.Context, code string) (*models.Profile, error) {
	referrer, err := s.profiles.FindByReferralCode(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to look up referral code")
	}
	if referrer == nil {
		return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, "referral code does not match any user")
	}
	return referrer, nil
}

// Register creates a profile after uniqueness checks, linking it to its
// referrer when a referral code was entered. The new document and the
// referrer's count are committed in one batch, so no observer sees a linked
// profile without the matching count. The check-then-write uniqueness probes
// are advisory: two concurrent submissions can still both pass.
func (s *ReferralService) Register(ctx context.Context, profile *models.Profile) error {
	existing, err := s.profiles.FindByEmail(ctx, profile.Email)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check email")
	}
	if existing != nil {
		return appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	if profile.ReferralCode != "" {
		owner, err := s.profiles.FindByReferralCode(ctx, profile.ReferralCode)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check referral code")
		}
		if owner != nil {
			return appErrors.Clone(appErrors.ErrDuplicateReferralCode, "")
		}
	}

	if profile.ReferralByCode == "" {
		profile.ReferrerID = ""
		if err := s.profiles.Create(ctx, profile); err != nil {
			return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create profile")
		}
		return nil
	}

	referrer, err := s.Resolve(ctx, profile.ReferralByCode)
	if err != nil {
		return err
	}
	profile.ReferrerID = referrer.ID
	if err := s.profiles.CreateLinked(ctx, profile, referrer.ID, referrer.ReferralCount+1); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create linked profile")
	}
	s.recordMutation("link")
	return nil
}

// RemoveUser deletes a profile and applies both referral side effects
// atomically with the deletion: the referrer's count drops by exactly one,
// and every profile that signed up with the deleted profile's code has its
// link fields cleared. Chains are severed, never re-parented.
func (s *ReferralService) RemoveUser(ctx context.Context, id string) error {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load profile")
	}

	var severedIDs []string
	if profile.ReferralCode != "" {
		referred, err := s.profiles.ListReferredBy(ctx, profile.ReferralCode)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list referred profiles")
		}
		for _, child := range referred {
			if child.ID == profile.ID {
				continue
			}
			severedIDs = append(severedIDs, child.ID)
		}
	}

	referrerID := ""
	referrerCount := 0
	if profile.ReferrerID != "" {
		referrer, err := s.profiles.FindByID(ctx, profile.ReferrerID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load referrer")
			}
			// Dangling referrerID: delete proceeds without a decrement.
			s.logger.Warn("referrer missing during delete", zap.String("profile_id", id), zap.String("referrer_id", profile.ReferrerID))
		} else {
			referrerID = referrer.ID
			referrerCount = referrer.ReferralCount - 1
			if referrerCount < 0 {
				referrerCount = 0
			}
		}
	}

	if err := s.profiles.DeleteCascade(ctx, id, referrerID, referrerCount, severedIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete profile")
	}
	if referrerID != "" || len(severedIDs) > 0 {
		s.recordMutation("cascade")
	}
	return nil
}

// Unlink severs one referral edge without deleting the referred profile.
func (s *ReferralService) Unlink(ctx context.Context, referredID string) error {
	profile, err := s.profiles.FindByID(ctx, referredID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load profile")
	}
	if profile.ReferrerID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user has no referrer")
	}

	referrer, err := s.profiles.FindByID(ctx, profile.ReferrerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrReferenceNotFound, "referrer no longer exists")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load referrer")
	}

	count := referrer.ReferralCount - 1
	if count < 0 {
		count = 0
	}
	if err := s.profiles.Unlink(ctx, profile.ID, referrer.ID, count); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to unlink profile")
	}
	s.recordMutation("unlink")
	return nil
}
