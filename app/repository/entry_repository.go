package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// columns replaced when a submission hits an existing natural key
var entryUpsertColumns = []string{
	"page_key",
	"period_start",
	"period_end",
	"unit",
	"amount",
	"status",
	"notes",
	"payload",
	"extra_payload",
	"updated_at",
}

// entryRepository implements the EntryRepository interface
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new entry repository instance
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

// Upsert writes the entry in a single statement keyed on the natural key and
// reads the stored row back. A row is reported as created when it carries
// the id generated for this call.
func (r *entryRepository) Upsert(ctx context.Context, entry *models.EnergyEntry) (*models.EnergyEntry, bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	candidate := entry.ID

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "owner_id"},
			{Name: "category"},
			{Name: "period_year"},
		},
		DoUpdates: clause.AssignmentColumns(entryUpsertColumns),
	}).Create(entry).Error
	if err != nil {
		return nil, false, err
	}

	var stored models.EnergyEntry
	err = db.Where("owner_id = ? AND category = ? AND period_year = ?", entry.OwnerID, entry.Category, entry.PeriodYear).
		Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, ErrNoRowReturned
	}
	if err != nil {
		return nil, false, err
	}

	return &stored, stored.ID == candidate, nil
}

// GetByID retrieves an entry by its ID
func (r *entryRepository) GetByID(ctx context.Context, id string) (*models.EnergyEntry, error) {
	var entry models.EnergyEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateFields applies a partial update to the entry
func (r *entryRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.EnergyEntry{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes an entry by its ID
func (r *entryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.EnergyEntry{}).Error
}

// List returns a page of entries matching the filter and the total match count
func (r *entryRepository) List(ctx context.Context, filter EntryFilter) ([]models.EnergyEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EnergyEntry{})
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PageKey != "" {
		query = query.Where("page_key = ?", filter.PageKey)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FromDate != "" {
		query = query.Where("period_end >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		query = query.Where("period_start <= ?", filter.ToDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.EnergyEntry
	query = query.Order("period_year DESC").Order("updated_at DESC").Order("id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
