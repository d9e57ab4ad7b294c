package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/store"
)

// ProfileRepository provides record-store access for the profiles collection.
// Referral bookkeeping writes are exposed as single batched operations so the
// referral ledger's effects are atomic from any external observer's view.
type ProfileRepository struct {
	store store.RecordStore
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(s store.RecordStore) *ProfileRepository {
	return &ProfileRepository{store: s}
}

// List returns every profile.
func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	docs, err := r.store.List(ctx, models.CollectionProfiles)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return decodeProfiles(docs)
}

// FindByID returns a profile by identifier.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	doc, err := r.store.Get(ctx, models.CollectionProfiles, id)
	if err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := doc.Decode(&profile); err != nil {
		return nil, err
	}
	profile.ID = doc.ID
	return &profile, nil
}

// FindByEmail returns the profile registered under the email, or nil.
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.findOneBy(ctx, "email", email)
}

// FindByReferralCode returns the profile owning the referral code, or nil.
func (r *ProfileRepository) FindByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	return r.findOneBy(ctx, "referralCode", code)
}

// ListReferredBy returns every profile that entered the given code at signup.
func (r *ProfileRepository) ListReferredBy(ctx context.Context, code string) ([]models.Profile, error) {
	docs, err := r.store.QueryEqual(ctx, models.CollectionProfiles, "referralByCode", code)
	if err != nil {
		return nil, fmt.Errorf("query referred profiles: %w", err)
	}
	return decodeProfiles(docs)
}

// Create stores a profile with no referral linkage.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	id, err := r.store.Add(ctx, models.CollectionProfiles, profile)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	profile.ID = id
	return nil
}

// CreateLinked stores a profile and applies the referrer's new count in one batch.
func (r *ProfileRepository) CreateLinked(ctx context.Context, profile *models.Profile, referrerID string, referrerCount int) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	batch := store.NewBatch().
		Set(models.CollectionProfiles, profile.ID, profile).
		Update(models.CollectionProfiles, referrerID, map[string]interface{}{
			"referralCount": referrerCount,
			"updatedAt":     now,
		})
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("create linked profile: %w", err)
	}
	return nil
}

// Update overwrites the stored profile document.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	batch := store.NewBatch().Set(models.CollectionProfiles, profile.ID, profile)
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// DeleteCascade removes a profile and applies all referral side effects in one
// batch: the referrer's decremented count and the severed links of every
// profile that used the deleted profile's code.
func (r *ProfileRepository) DeleteCascade(ctx context.Context, id string, referrerID string, referrerCount int, severedIDs []string) error {
	now := time.Now().UTC()
	batch := store.NewBatch().Delete(models.CollectionProfiles, id)
	if referrerID != "" {
		batch.Update(models.CollectionProfiles, referrerID, map[string]interface{}{
			"referralCount": referrerCount,
			"updatedAt":     now,
		})
	}
	for _, severedID := range severedIDs {
		batch.Update(models.CollectionProfiles, severedID, map[string]interface{}{
			"referralByCode": "",
			"referrerID":     "",
			"updatedAt":      now,
		})
	}
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("delete profile cascade: %w", err)
	}
	return nil
}

// Unlink severs one referral edge: clears the referred profile's link fields
// and applies the referrer's decremented count, batched together.
func (r *ProfileRepository) Unlink(ctx context.Context, referredID, referrerID string, referrerCount int) error {
	now := time.Now().UTC()
	batch := store.NewBatch().
		Update(models.CollectionProfiles, referredID, map[string]interface{}{
			"referralByCode": "",
			"referrerID":     "",
			"updatedAt":      now,
		}).
		Update(models.CollectionProfiles, referrerID, map[string]interface{}{
			"referralCount": referrerCount,
			"updatedAt":     now,
		})
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("unlink profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) findOneBy(ctx context.Context, field, value string) (*models.Profile, error) {
	docs, err := r.store.QueryEqual(ctx, models.CollectionProfiles, field, value)
	if err != nil {
		return nil, fmt.Errorf("query profiles by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var profile models.Profile
	if err := docs[0].Decode(&profile); err != nil {
		return nil, err
	}
	profile.ID = docs[0].ID
	return &profile, nil
}

func decodeProfiles(docs []store.Document) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, len(docs))
	for _, doc := range docs {
		var profile models.Profile
		if err := doc.Decode(&profile); err != nil {
			return nil, err
		}
		profile.ID = doc.ID
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
