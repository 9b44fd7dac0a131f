package repository

import (
	"context"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"gorm.io/gorm"
)

// entryFileRepository implements the EntryFileRepository interface
type entryFileRepository struct {
	db *gorm.DB
}

// NewEntryFileRepository creates a new evidence file repository instance
func NewEntryFileRepository(db *gorm.DB) EntryFileRepository {
	return &entryFileRepository{db: db}
}

// Create inserts the metadata row for a stored blob
func (r *entryFileRepository) Create(ctx context.Context, file *models.EntryFile) error {
	res := r.db.WithContext(ctx).Create(file)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowReturned
	}
	return nil
}

// GetByID retrieves a file row by its ID
func (r *entryFileRepository) GetByID(ctx context.Context, id string) (*models.EntryFile, error) {
	var file models.EntryFile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Delete removes a file row by its ID
func (r *entryFileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.EntryFile{}).Error
}

// ListByEntry returns the files attached to an entry, newest first
func (r *entryFileRepository) ListByEntry(ctx context.Context, entryID, ownerID string) ([]models.EntryFile, error) {
	query := r.db.WithContext(ctx).Where("entry_id = ?", entryID)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	var files []models.EntryFile
	if err := query.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
