package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EntryStatus is the lifecycle state of an energy entry
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "draft"
	EntryStatusSubmitted EntryStatus = "submitted"
	EntryStatusApproved  EntryStatus = "approved"
	EntryStatusRejected  EntryStatus = "rejected"
	EntryStatusNeedsFix  EntryStatus = "needs_fix"
)

// PayloadMonthlyKey is the reserved payload key holding the monthly usage map.
const PayloadMonthlyKey = "monthly"

// EnergyEntryNaturalKey names the unique index on (owner_id, category, period_year).
const EnergyEntryNaturalKey = "idx_energy_entries_natural_key"

// EnergyEntry is one owner's yearly usage record for a single energy category.
type EnergyEntry struct {
	ID           string            `gorm:"primaryKey;type:char(36)" json:"id"`
	OwnerID      string            `gorm:"type:char(36);not null;uniqueIndex:idx_energy_entries_natural_key,priority:1" json:"owner_id"`
	Category     string            `gorm:"type:varchar(100);not null;uniqueIndex:idx_energy_entries_natural_key,priority:2" json:"category"`
	PeriodYear   int               `gorm:"not null;uniqueIndex:idx_energy_entries_natural_key,priority:3" json:"period_year"`
	PageKey      string            `gorm:"type:varchar(50);not null;index:idx_energy_entries_page_key" json:"page_key"`
	PeriodStart  string            `gorm:"type:char(10);not null;index:idx_energy_entries_period" json:"period_start"`
	PeriodEnd    string            `gorm:"type:char(10);not null" json:"period_end"`
	Unit         string            `gorm:"type:varchar(50);not null" json:"unit"`
	Amount       float64           `gorm:"not null" json:"amount"`
	Status       EntryStatus       `gorm:"type:varchar(20);not null;index:idx_energy_entries_status" json:"status"`
	Notes        *string           `gorm:"type:text" json:"notes"`
	Payload      datatypes.JSONMap `json:"payload"`
	ExtraPayload datatypes.JSONMap `json:"extraPayload"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was set
func (e *EnergyEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// PeriodBounds returns the first and last calendar day of the year.
func PeriodBounds(year int) (string, string) {
	return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year)
}

// Monthly extracts the monthly usage map stored in the payload. It handles
// both the in-memory form and the decoded JSON form.
func (e *EnergyEntry) Monthly() map[int]float64 {
	out := map[int]float64{}
	if e.Payload == nil {
		return out
	}
	switch raw := e.Payload[PayloadMonthlyKey].(type) {
	case map[string]float64:
		for k, v := range raw {
			if m, err := strconv.Atoi(k); err == nil {
				out[m] = v
			}
		}
	case map[string]interface{}:
		for k, v := range raw {
			m, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			if f, ok := toFloat(v); ok {
				out[m] = f
			}
		}
	}
	return out
}

// SetMonthly stores the monthly map in the payload under the reserved key.
func (e *EnergyEntry) SetMonthly(monthly map[int]float64) {
	if e.Payload == nil {
		e.Payload = datatypes.JSONMap{}
	}
	e.Payload[PayloadMonthlyKey] = MonthlyPayload(monthly)
}

// MonthlyPayload converts a monthly map into its JSON payload form.
func MonthlyPayload(monthly map[int]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(monthly))
	for m, v := range monthly {
		out[strconv.Itoa(m)] = v
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
