package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/store"
)

// ContentRepository provides record-store access for blogs, ads, and the
// mining-rate settings document.
type ContentRepository struct {
	store store.RecordStore
}

// NewContentRepository creates a new instance of ContentRepository.
func NewContentRepository(s store.RecordStore) *ContentRepository {
	return &ContentRepository{store: s}
}

// ListBlogs returns every blog post.
func (r *ContentRepository) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	docs, err := r.store.List(ctx, models.CollectionBlogs)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	blogs := make([]models.Blog, 0, len(docs))
	for _, doc := range docs {
		var blog models.Blog
		if err := doc.Decode(&blog); err != nil {
			return nil, err
		}
		blog.ID = doc.ID
		blogs = append(blogs, blog)
	}
	return blogs, nil
}

// FindBlog returns a blog post by identifier.
func (r *ContentRepository) FindBlog(ctx context.Context, id string) (*models.Blog, error) {
	doc, err := r.store.Get(ctx, models.CollectionBlogs, id)
	if err != nil {
		return nil, err
	}
	var blog models.Blog
	if err := doc.Decode(&blog); err != nil {
		return nil, err
	}
	blog.ID = doc.ID
	return &blog, nil
}

// CreateBlog stores a new blog post.
func (r *ContentRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	now := time.Now().UTC()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	id, err := r.store.Add(ctx, models.CollectionBlogs, blog)
	if err != nil {
		return fmt.Errorf("create blog: %w", err)
	}
	blog.ID = id
	return nil
}

// UpdateBlog overwrites the stored blog document.
func (r *ContentRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	blog.UpdatedAt = time.Now().UTC()
	batch := store.NewBatch().Set(models.CollectionBlogs, blog.ID, blog)
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("update blog: %w", err)
	}
	return nil
}

// DeleteBlog removes a blog post.
func (r *ContentRepository) DeleteBlog(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionBlogs, id); err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	return nil
}

// ListAds returns every ad.
func (r *ContentRepository) ListAds(ctx context.Context) ([]models.Ad, error) {
	docs, err := r.store.List(ctx, models.CollectionAds)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	ads := make([]models.Ad, 0, len(docs))
	for _, doc := range docs {
		var ad models.Ad
		if err := doc.Decode(&ad); err != nil {
			return nil, err
		}
		ad.ID = doc.ID
		ads = append(ads, ad)
	}
	return ads, nil
}

// FindAd returns an ad by identifier.
func (r *ContentRepository) FindAd(ctx context.Context, id string) (*models.Ad, error) {
	doc, err := r.store.Get(ctx, models.CollectionAds, id)
	if err != nil {
		return nil, err
	}
	var ad models.Ad
	if err := doc.Decode(&ad); err != nil {
		return nil, err
	}
	ad.ID = doc.ID
	return &ad, nil
}

// CreateAd stores a new ad.
func (r *ContentRepository) CreateAd(ctx context.Context, ad *models.Ad) error {
	now := time.Now().UTC()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	id, err := r.store.Add(ctx, models.CollectionAds, ad)
	if err != nil {
		return fmt.Errorf("create ad: %w", err)
	}
	ad.ID = id
	return nil
}

// UpdateAd overwrites the stored ad document.
func (r *ContentRepository) UpdateAd(ctx context.Context, ad *models.Ad) error {
	ad.UpdatedAt = time.Now().UTC()
	batch := store.NewBatch().Set(models.CollectionAds, ad.ID, ad)
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("update ad: %w", err)
	}
	return nil
}

// DeleteAd removes an ad.
func (r *ContentRepository) DeleteAd(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionAds, id); err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	return nil
}

// GetMiningRate loads the mining-rate settings document. A missing document
// yields a zero rate.
func (r *ContentRepository) GetMiningRate(ctx context.Context) (*models.MiningRate, error) {
	doc, err := r.store.Get(ctx, models.CollectionSettings, models.MiningRateDocID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.MiningRate{ID: models.MiningRateDocID}, nil
		}
		return nil, fmt.Errorf("get mining rate: %w", err)
	}
	var rate models.MiningRate
	if err := doc.Decode(&rate); err != nil {
		return nil, err
	}
	rate.ID = doc.ID
	return &rate, nil
}

// SetMiningRate overwrites the mining-rate settings document.
func (r *ContentRepository) SetMiningRate(ctx context.Context, rate *models.MiningRate) error {
	rate.ID = models.MiningRateDocID
	rate.UpdatedAt = time.Now().UTC()
	batch := store.NewBatch().Set(models.CollectionSettings, rate.ID, rate)
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("set mining rate: %w", err)
	}
	return nil
}
