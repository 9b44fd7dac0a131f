package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvidenceFileType classifies an uploaded evidence document
type EvidenceFileType string

const (
	FileTypeMSDS              EvidenceFileType = "msds"
	FileTypeUsageEvidence     EvidenceFileType = "usage_evidence"
	FileTypeOther             EvidenceFileType = "other"
	FileTypeHeatValueEvidence EvidenceFileType = "heat_value_evidence"
	FileTypeAnnualEvidence    EvidenceFileType = "annual_evidence"
	FileTypeNameplateEvidence EvidenceFileType = "nameplate_evidence"
)

// EntryFile is the metadata row for an evidence blob in the object store.
// OwnerID is copied from the uploader and never changes.
type EntryFile struct {
	ID         string           `gorm:"primaryKey;type:char(36)" json:"id"`
	OwnerID    string           `gorm:"type:char(36);not null;index:idx_entry_files_owner" json:"owner_id"`
	EntryID    *string          `gorm:"type:char(36);index:idx_entry_files_entry" json:"entry_id"`
	FilePath   string           `gorm:"type:varchar(1024);not null" json:"file_path"`
	FileName   string           `gorm:"type:varchar(255);not null" json:"file_name"`
	MimeType   string           `gorm:"type:varchar(100)" json:"mime_type"`
	FileSize   int64            `gorm:"not null" json:"file_size"`
	PageKey    string           `gorm:"type:varchar(50);not null;index:idx_entry_files_page_key" json:"page_key"`
	FileType   EvidenceFileType `gorm:"type:varchar(30);not null" json:"file_type"`
	Standard   string           `gorm:"type:varchar(4);not null" json:"standard"`
	PeriodYear int              `gorm:"not null" json:"period_year"`
	Month      *int             `json:"month"`
	RecordID   *string          `gorm:"type:varchar(100)" json:"record_id"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns a UUID when none was set
func (f *EntryFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
