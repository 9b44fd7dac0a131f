package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"gorm.io/gorm"
)

// ErrNoRowReturned is returned when a write succeeded but the row it
// should have produced cannot be read back.
var ErrNoRowReturned = errors.New("repository: no row returned")

// ProfileRepository defines the interface for profile-related database operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*models.Profile, error)
	SetActive(ctx context.Context, ids []string, active bool) (int64, error)
}

// EntryFilter narrows entry listings. Empty fields are ignored. The date
// range matches entries whose period overlaps [FromDate, ToDate].
type EntryFilter struct {
	OwnerID  string
	Category string
	PageKey  string
	Status   models.EntryStatus
	FromDate string
	ToDate   string
	Offset   int
	Limit    int
}

// EntryRepository defines the interface for energy entry database operations
type EntryRepository interface {
	// Upsert inserts the entry or replaces the row with the same natural key.
	// The boolean reports whether a new row was created.
	Upsert(ctx context.Context, entry *models.EnergyEntry) (*models.EnergyEntry, bool, error)
	GetByID(ctx context.Context, id string) (*models.EnergyEntry, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EntryFilter) ([]models.EnergyEntry, int64, error)
}

// EntryFileRepository defines the interface for evidence file metadata
type EntryFileRepository interface {
	Create(ctx context.Context, file *models.EntryFile) error
	GetByID(ctx context.Context, id string) (*models.EntryFile, error)
	Delete(ctx context.Context, id string) error
	// ListByEntry returns the files of an entry; an empty ownerID lists every owner.
	ListByEntry(ctx context.Context, entryID, ownerID string) ([]models.EntryFile, error)
}

// ReviewRepository defines the interface for the review audit trail
type ReviewRepository interface {
	Create(ctx context.Context, review *models.EntryReview) error
	ListByEntry(ctx context.Context, entryID string) ([]models.EntryReview, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Profile ProfileRepository
	Entry   EntryRepository
	File    EntryFileRepository
	Review  ReviewRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profile: NewProfileRepository(db),
		Entry:   NewEntryRepository(db),
		File:    NewEntryFileRepository(db),
		Review:  NewReviewRepository(db),
	}
}
