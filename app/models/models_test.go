package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestPeriodBounds(t *testing.T) {
	start, end := PeriodBounds(2024)
	assert.Equal(t, "2024-01-01", start)
	assert.Equal(t, "2024-12-31", end)
}

func TestEnergyEntryMonthly_RoundTripThroughJSON(t *testing.T) {
	e := &EnergyEntry{Payload: datatypes.JSONMap{"meter": "A"}}
	e.SetMonthly(map[int]float64{1: 10.5, 12: 3})

	assert.Equal(t, map[int]float64{1: 10.5, 12: 3}, e.Monthly())
	assert.Equal(t, "A", e.Payload["meter"])

	raw, err := json.Marshal(e.Payload)
	require.NoError(t, err)

	var decoded datatypes.JSONMap
	require.NoError(t, json.Unmarshal(raw, &decoded))
	loaded := &EnergyEntry{Payload: decoded}
	assert.Equal(t, map[int]float64{1: 10.5, 12: 3}, loaded.Monthly())
}

func TestEnergyEntryMonthly_Empty(t *testing.T) {
	assert.Empty(t, (&EnergyEntry{}).Monthly())
	assert.Empty(t, (&EnergyEntry{Payload: datatypes.JSONMap{"monthly": "bogus"}}).Monthly())
}

func TestBeforeCreate_KeepsExistingID(t *testing.T) {
	e := &EnergyEntry{ID: "fixed"}
	require.NoError(t, e.BeforeCreate(nil))
	assert.Equal(t, "fixed", e.ID)

	f := &EntryFile{}
	require.NoError(t, f.BeforeCreate(nil))
	assert.Len(t, f.ID, 36)

	r := &EntryReview{}
	require.NoError(t, r.BeforeCreate(nil))
	assert.Len(t, r.ID, 36)
}

func TestProfileValidate(t *testing.T) {
	p := &Profile{ID: "u1", Role: ROLE_MANAGER, IsActive: true}
	assert.NoError(t, p.Validate())
	assert.False(t, p.IsAdmin())

	p.Role = "owner"
	assert.Error(t, p.Validate())
}

func TestHashAPIKey(t *testing.T) {
	h := HashAPIKey("secret")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashAPIKey("secret"))
	assert.NotEqual(t, h, HashAPIKey("Secret"))
}
