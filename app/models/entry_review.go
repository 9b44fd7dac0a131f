package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReviewStatus is the decision recorded by a reviewer
type ReviewStatus string

const (
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
	ReviewStatusNeedsFix ReviewStatus = "needs_fix"
)

// EntryReview is an append-only audit record of an admin decision.
// Recording a review does not change the entry's status.
type EntryReview struct {
	ID               string                      `gorm:"primaryKey;type:char(36)" json:"id"`
	EntryID          string                      `gorm:"type:char(36);not null;index:idx_entry_reviews_entry" json:"entry_id"`
	ReviewerID       string                      `gorm:"type:char(36);not null" json:"reviewer_id"`
	Status           ReviewStatus                `gorm:"type:varchar(20);not null" json:"status"`
	Note             string                      `gorm:"type:text" json:"note"`
	RequestedChanges datatypes.JSONSlice[string] `json:"requested_changes"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns a UUID when none was set
func (r *EntryReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
