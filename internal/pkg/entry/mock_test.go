package entry

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
)

type mockEntryRepository struct {
	mock.Mock
}

func (m *mockEntryRepository) Upsert(ctx context.Context, e *models.EnergyEntry) (*models.EnergyEntry, bool, error) {
	args := m.Called(ctx, e)
	stored, _ := args.Get(0).(*models.EnergyEntry)
	return stored, args.Bool(1), args.Error(2)
}

func (m *mockEntryRepository) GetByID(ctx context.Context, id string) (*models.EnergyEntry, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*models.EnergyEntry)
	return e, args.Error(1)
}

func (m *mockEntryRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *mockEntryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEntryRepository) List(ctx context.Context, filter repository.EntryFilter) ([]models.EnergyEntry, int64, error) {
	args := m.Called(ctx, filter)
	entries, _ := args.Get(0).([]models.EnergyEntry)
	return entries, args.Get(1).(int64), args.Error(2)
}
