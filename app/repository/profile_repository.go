package repository

import (
	"context"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"gorm.io/gorm"
)

// profileRepository implements the ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a new profile in the database
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByID retrieves a profile by its identity id
func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByAPIKeyHash retrieves the profile owning the hashed API key
func (r *profileRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("api_key_hash = ?", hash).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetActive updates the active flag of all given profiles in one statement
func (r *profileRepository) SetActive(ctx context.Context, ids []string, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id IN ?", ids).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}
