package entry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/carbon"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/catalog"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/database"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics/counter"
)

var (
	owner  = &authz.Principal{ID: "11111111-1111-4111-8111-111111111111", Role: authz.RoleUser, IsActive: true}
	other  = &authz.Principal{ID: "22222222-2222-4222-8222-222222222222", Role: authz.RoleUser, IsActive: true}
	admin  = &authz.Principal{ID: "33333333-3333-4333-8333-333333333333", Role: authz.RoleAdmin, IsActive: true}
	viewer = &authz.Principal{ID: "44444444-4444-4444-8444-444444444444", Role: authz.RoleViewer, IsActive: true}
)

type fixture struct {
	svc     *Service
	entries repository.EntryRepository
	counter *counter.MemoryCounter
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)
	return newFixtureWithRepo(t, repository.NewEntryRepository(db), opts...)
}

func newFixtureWithRepo(t *testing.T, entries repository.EntryRepository, opts ...Option) *fixture {
	t.Helper()
	gate, err := authz.NewGate()
	require.NoError(t, err)
	c := counter.NewMemoryCounter()
	opts = append([]Option{WithCounter(c), WithMetrics(metrics.New(prometheus.NewRegistry()))}, opts...)
	cat := catalog.Default()
	return &fixture{
		svc:     NewService(entries, cat, carbon.NewEngine(cat), gate, opts...),
		entries: entries,
		counter: c,
	}
}

func dieselInput() SubmitInput {
	return SubmitInput{
		PageKey:    "diesel",
		PeriodYear: 2024,
		Unit:       "L",
		Monthly:    map[int]float64{1: 100.004, 2: 200.002},
	}
}

func TestSubmit_CreatesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, owner, dieselInput())
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 300.01, res.Amount)

	stored, err := f.entries.GetByID(ctx, res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, stored.OwnerID)
	assert.Equal(t, "diesel", stored.PageKey)
	assert.Equal(t, "2024-01-01", stored.PeriodStart)
	assert.Equal(t, "2024-12-31", stored.PeriodEnd)
	assert.Equal(t, models.EntryStatusSubmitted, stored.Status)
	assert.Equal(t, map[int]float64{1: 100.004, 2: 200.002}, stored.Monthly())

	cat, _ := catalog.Default().Category("diesel")
	assert.Equal(t, cat.Label, stored.Category)

	snap, _ := f.counter.Snapshot(ctx)
	assert.Equal(t, int64(1), snap[counter.Submissions])
}

func TestSubmit_IsIdempotentOnNaturalKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, owner, dieselInput())
	require.NoError(t, err)

	in := dieselInput()
	in.Monthly = map[int]float64{3: 5}
	in.Status = models.EntryStatusDraft
	second, err := f.svc.Submit(ctx, owner, in)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.EntryID, second.EntryID)

	entries, total, err := f.entries.List(ctx, repository.EntryFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, 5.0, entries[0].Amount)
	assert.Equal(t, models.EntryStatusDraft, entries[0].Status)
	assert.Equal(t, map[int]float64{3: 5}, entries[0].Monthly())
}

func TestSubmit_UnknownPageKeyTouchesNoStore(t *testing.T) {
	repo := new(mockEntryRepository)
	f := newFixtureWithRepo(t, repo)

	in := dieselInput()
	in.PageKey = "unobtainium"
	_, err := f.svc.Submit(context.Background(), owner, in)

	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, e.Kind)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "page_key", e.Details[0].Field)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSubmit_ViewerIsRejected(t *testing.T) {
	repo := new(mockEntryRepository)
	f := newFixtureWithRepo(t, repo)

	_, err := f.svc.Submit(context.Background(), viewer, dieselInput())
	assert.ErrorIs(t, err, apperror.InsufficientPermissions())
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSubmit_NoRowReturnedIsDatabaseError(t *testing.T) {
	repo := new(mockEntryRepository)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil, false, repository.ErrNoRowReturned)
	f := newFixtureWithRepo(t, repo)

	_, err := f.svc.Submit(context.Background(), owner, dieselInput())
	assert.Equal(t, apperror.KindDatabase, apperror.KindOf(err))
	assert.ErrorIs(t, err, repository.ErrNoRowReturned)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSubmit_HookFailureRemovesCreatedRow(t *testing.T) {
	hookErr := errors.New("audit sink unavailable")
	f := newFixture(t, WithAfterUpsert(func(context.Context, *models.EnergyEntry, bool) error {
		return hookErr
	}))
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, owner, dieselInput())
	assert.Same(t, hookErr, err)

	_, total, err := f.entries.List(ctx, repository.EntryFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	snap, _ := f.counter.Snapshot(ctx)
	assert.Equal(t, int64(1), snap[counter.Compensations])
	assert.Equal(t, int64(0), snap[counter.Submissions])
}

func TestSubmit_HookFailureKeepsReplacedRow(t *testing.T) {
	fail := false
	hookErr := errors.New("hook failed")
	f := newFixture(t, WithAfterUpsert(func(context.Context, *models.EnergyEntry, bool) error {
		if fail {
			return hookErr
		}
		return nil
	}))
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, owner, dieselInput())
	require.NoError(t, err)

	fail = true
	_, err = f.svc.Submit(ctx, owner, dieselInput())
	assert.ErrorIs(t, err, hookErr)

	_, err = f.entries.GetByID(ctx, first.EntryID)
	assert.NoError(t, err)
}

func TestSubmit_CompensationFailureKeepsOriginalError(t *testing.T) {
	hookErr := errors.New("hook failed")
	stored := &models.EnergyEntry{ID: "e-1", OwnerID: owner.ID}

	repo := new(mockEntryRepository)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(stored, true, nil)
	repo.On("Delete", mock.Anything, "e-1").Return(errors.New("db gone"))

	f := newFixtureWithRepo(t, repo, WithAfterUpsert(func(context.Context, *models.EnergyEntry, bool) error {
		return hookErr
	}))

	_, err := f.svc.Submit(context.Background(), owner, dieselInput())
	assert.Same(t, hookErr, err)
	repo.AssertCalled(t, "Delete", mock.Anything, "e-1")
}

func TestUpdate_PartialFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := dieselInput()
	in.Payload = map[string]any{"source": "invoice"}
	created, err := f.svc.Submit(ctx, owner, in)
	require.NoError(t, err)

	unit := "kL"
	res, err := f.svc.Update(ctx, owner, created.EntryID, UpdateInput{
		Unit:    &unit,
		Monthly: map[int]float64{6: 12.34, 7: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"unit", "amount", "payload"}, res.UpdatedFields)

	stored, err := f.entries.GetByID(ctx, created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "kL", stored.Unit)
	assert.Equal(t, 13.34, stored.Amount)
	assert.Equal(t, map[int]float64{6: 12.34, 7: 1}, stored.Monthly())
	assert.Equal(t, "invoice", stored.Payload["source"])
	assert.Nil(t, stored.Notes)
}

func TestUpdate_PayloadKeepsMonthly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Submit(ctx, owner, dieselInput())
	require.NoError(t, err)

	status := models.EntryStatusDraft
	res, err := f.svc.Update(ctx, owner, created.EntryID, UpdateInput{
		Payload: map[string]any{"meter": "A-1"},
		Status:  &status,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"payload", "status"}, res.UpdatedFields)

	stored, err := f.entries.GetByID(ctx, created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "A-1", stored.Payload["meter"])
	assert.Equal(t, map[int]float64{1: 100.004, 2: 200.002}, stored.Monthly())
	assert.Equal(t, models.EntryStatusDraft, stored.Status)
}

func TestUpdate_NoFieldsIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Submit(ctx, owner, dieselInput())
	require.NoError(t, err)

	res, err := f.svc.Update(ctx, owner, created.EntryID, UpdateInput{})
	require.NoError(t, err)
	assert.Empty(t, res.UpdatedFields)
	assert.NotNil(t, res.UpdatedFields)
}

func TestUpdate_NotFoundAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, owner, "00000000-0000-4000-8000-000000000000", UpdateInput{})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	created, err := f.svc.Submit(ctx, owner, dieselInput())
	require.NoError(t, err)

	unit := "m3"
	_, err = f.svc.Update(ctx, other, created.EntryID, UpdateInput{Unit: &unit})
	assert.ErrorIs(t, err, apperror.NotOwner("entry"))

	stored, err := f.entries.GetByID(ctx, created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "L", stored.Unit)

	_, err = f.svc.Update(ctx, admin, created.EntryID, UpdateInput{Unit: &unit})
	assert.NoError(t, err)
}

func TestUpdate_OwnershipFailureMakesNoWrites(t *testing.T) {
	repo := new(mockEntryRepository)
	repo.On("GetByID", mock.Anything, "e-1").Return(&models.EnergyEntry{ID: "e-1", OwnerID: owner.ID}, nil)
	f := newFixtureWithRepo(t, repo)

	unit := "m3"
	_, err := f.svc.Update(context.Background(), other, "e-1", UpdateInput{Unit: &unit})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAndEmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := dieselInput()
	in.Monthly = map[int]float64{1: 100, 2: 200}
	created, err := f.svc.Submit(ctx, owner, in)
	require.NoError(t, err)

	res, err := f.svc.Emission(ctx, owner, created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, 782.04, res.TotalEmission)
	assert.Equal(t, map[int]float64{1: 260.68, 2: 521.36}, res.MonthlyEmission)

	_, err = f.svc.Get(ctx, other, created.EntryID)
	assert.ErrorIs(t, err, apperror.NotOwner("entry"))

	manager := &authz.Principal{ID: "m", Role: authz.RoleManager, IsActive: true}
	_, err = f.svc.Get(ctx, manager, created.EntryID)
	assert.ErrorIs(t, err, apperror.NotOwner("entry"))

	_, err = f.svc.Get(ctx, admin, created.EntryID)
	assert.NoError(t, err)
}

func TestListOwnAndAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, owner, dieselInput())
	require.NoError(t, err)
	in := dieselInput()
	in.PageKey = "gasoline"
	_, err = f.svc.Submit(ctx, other, in)
	require.NoError(t, err)

	own, err := f.svc.ListOwn(ctx, owner, repository.EntryFilter{OwnerID: other.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, own.Total)
	assert.Equal(t, owner.ID, own.Entries[0].OwnerID)

	_, err = f.svc.ListAll(ctx, owner, repository.EntryFilter{})
	assert.ErrorIs(t, err, apperror.InsufficientPermissions())

	all, err := f.svc.ListAll(ctx, admin, repository.EntryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	byUser, err := f.svc.ListAll(ctx, admin, repository.EntryFilter{OwnerID: other.ID, PageKey: "gasoline"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, byUser.Total)
}
