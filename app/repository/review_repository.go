package repository

import (
	"context"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"gorm.io/gorm"
)

// reviewRepository implements the ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create appends a review record
func (r *reviewRepository) Create(ctx context.Context, review *models.EntryReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ListByEntry returns the reviews of an entry, newest first
func (r *reviewRepository) ListByEntry(ctx context.Context, entryID string) ([]models.EntryReview, error) {
	var reviews []models.EntryReview
	err := r.db.WithContext(ctx).Where("entry_id = ?", entryID).
		Order("created_at DESC").Order("id").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
