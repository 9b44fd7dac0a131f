// Package entry creates, updates and reads yearly energy usage entries.
package entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/carbon"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/catalog"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/saga"
)

// Submission saga states
const (
	StateUpserted  saga.State = "UPSERTED"
	StateCommitted saga.State = "COMMITTED"
)

const sagaName = "entry_submit"

// AfterUpsertFunc runs after the entry row was written. When it fails and
// the row was created by the same call, the row is removed again.
type AfterUpsertFunc func(ctx context.Context, entry *models.EnergyEntry, created bool) error

// SubmitInput is a validated submission.
type SubmitInput struct {
	PageKey      string
	PeriodYear   int
	Unit         string
	Monthly      map[int]float64
	Notes        *string
	Payload      map[string]any
	ExtraPayload map[string]any
	Status       models.EntryStatus
}

// SubmitResult describes the stored row.
type SubmitResult struct {
	EntryID string
	Created bool
	Amount  float64
}

// UpdateInput holds the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	Unit         *string
	Monthly      map[int]float64
	Notes        *string
	Payload      map[string]any
	ExtraPayload map[string]any
	Status       *models.EntryStatus
}

// UpdateResult lists the columns written.
type UpdateResult struct {
	EntryID       string
	UpdatedFields []string
}

// ListResult is one page of entries.
type ListResult struct {
	Entries []models.EnergyEntry
	Total   int64
}

// Service implements the entry operations.
type Service struct {
	entries     repository.EntryRepository
	catalog     *catalog.Catalog
	engine      *carbon.Engine
	gate        *authz.Gate
	metrics     *metrics.Metrics
	counter     counter.Counter
	afterUpsert AfterUpsertFunc
}

// Option configures a Service.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCounter(c counter.Counter) Option {
	return func(s *Service) { s.counter = c }
}

// WithAfterUpsert installs a hook that runs after every successful upsert.
func WithAfterUpsert(fn AfterUpsertFunc) Option {
	return func(s *Service) { s.afterUpsert = fn }
}

func NewService(entries repository.EntryRepository, cat *catalog.Catalog, engine *carbon.Engine, gate *authz.Gate, opts ...Option) *Service {
	s := &Service{entries: entries, catalog: cat, engine: engine, gate: gate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates the entry for (owner, category, year) or replaces it.
func (s *Service) Submit(ctx context.Context, p *authz.Principal, in SubmitInput) (*SubmitResult, error) {
	if err := s.gate.Require(p, authz.PermEntriesWrite); err != nil {
		return nil, err
	}

	cat, ok := s.catalog.Category(in.PageKey)
	if !ok {
		return nil, apperror.InvalidField("page_key", "unknown", fmt.Sprintf("unknown page_key %q", in.PageKey))
	}

	status := in.Status
	if status == "" {
		status = models.EntryStatusSubmitted
	}
	start, end := models.PeriodBounds(in.PeriodYear)

	e := &models.EnergyEntry{
		OwnerID:      p.ID,
		Category:     cat.Label,
		PageKey:      in.PageKey,
		PeriodYear:   in.PeriodYear,
		PeriodStart:  start,
		PeriodEnd:    end,
		Unit:         in.Unit,
		Amount:       carbon.Sum(in.Monthly),
		Status:       status,
		Notes:        in.Notes,
		Payload:      copyMap(in.Payload),
		ExtraPayload: copyMap(in.ExtraPayload),
	}
	e.SetMonthly(in.Monthly)

	var (
		stored  *models.EnergyEntry
		created bool
	)
	run := saga.New(sagaName, s.metrics.SagaHooks())
	run.Add(saga.Step{
		Name:    "upsert",
		Reached: StateUpserted,
		Do: func(ctx context.Context) error {
			var err error
			stored, created, err = s.entries.Upsert(ctx, e)
			if errors.Is(err, repository.ErrNoRowReturned) {
				return apperror.Database("entry upsert returned no row", err)
			}
			if err != nil {
				return apperror.Database("failed to save entry", err)
			}
			return nil
		},
		Undo: func(ctx context.Context) error {
			if !created {
				return nil
			}
			log.Warnf("[EntryUpsert] Removing entry %s created by failed submission", stored.ID)
			counter.Add(ctx, s.counter, counter.Compensations)
			return s.entries.Delete(ctx, stored.ID)
		},
	})
	if s.afterUpsert != nil {
		run.Add(saga.Step{
			Name:    "after_upsert",
			Reached: StateCommitted,
			Do: func(ctx context.Context) error {
				return s.afterUpsert(ctx, stored, created)
			},
		})
	}

	if err := run.Run(ctx); err != nil {
		log.Errorf("[EntryUpsert] Submission for user %s, %s %d failed: %v", p.ID, in.PageKey, in.PeriodYear, err)
		return nil, err
	}

	s.metrics.EntrySubmitted(created)
	counter.Add(ctx, s.counter, counter.Submissions)
	log.Infof("[EntryUpsert] Entry %s for user %s saved (created=%t)", stored.ID, p.ID, created)

	return &SubmitResult{EntryID: stored.ID, Created: created, Amount: stored.Amount}, nil
}

// Update changes only the fields present in the input. Ownership is checked
// before anything is written.
func (s *Service) Update(ctx context.Context, p *authz.Principal, id string, in UpdateInput) (*UpdateResult, error) {
	if err := s.gate.Require(p, authz.PermEntriesWrite); err != nil {
		return nil, err
	}

	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckOwnership(p, e.OwnerID, "entry"); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	var updated []string
	set := func(column string, value interface{}) {
		fields[column] = value
		updated = append(updated, column)
	}

	if in.Unit != nil {
		set("unit", *in.Unit)
	}
	if in.Monthly != nil {
		set("amount", carbon.Sum(in.Monthly))
	}
	if in.Payload != nil || in.Monthly != nil {
		payload := datatypes.JSONMap(copyMap(in.Payload))
		if in.Payload == nil {
			payload = copyMap(e.Payload)
		}
		if in.Monthly != nil {
			payload[models.PayloadMonthlyKey] = models.MonthlyPayload(in.Monthly)
		} else if monthly, ok := e.Payload[models.PayloadMonthlyKey]; ok {
			payload[models.PayloadMonthlyKey] = monthly
		}
		set("payload", payload)
	}
	if in.Notes != nil {
		set("notes", *in.Notes)
	}
	if in.ExtraPayload != nil {
		set("extra_payload", datatypes.JSONMap(copyMap(in.ExtraPayload)))
	}
	if in.Status != nil {
		set("status", *in.Status)
	}

	if len(fields) == 0 {
		return &UpdateResult{EntryID: e.ID, UpdatedFields: []string{}}, nil
	}

	if err := s.entries.UpdateFields(ctx, e.ID, fields); err != nil {
		return nil, apperror.Database("failed to update entry", err)
	}
	counter.Add(ctx, s.counter, counter.EntryUpdates)
	log.Infof("[EntryUpsert] Entry %s updated by %s: %v", e.ID, p.ID, updated)

	return &UpdateResult{EntryID: e.ID, UpdatedFields: updated}, nil
}

// Get returns an entry visible to the principal: its own entries, or any
// entry for roles that may read the admin listing.
func (s *Service) Get(ctx context.Context, p *authz.Principal, id string) (*models.EnergyEntry, error) {
	if err := s.gate.Require(p, authz.PermEntriesRead); err != nil {
		return nil, err
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.OwnerID != p.ID && !s.gate.Allowed(p.Role, authz.PermAdminEntriesRead) {
		return nil, apperror.NotOwner("entry")
	}
	return e, nil
}

// Emission calculates the carbon emission of a stored entry.
func (s *Service) Emission(ctx context.Context, p *authz.Principal, id string) (carbon.Result, error) {
	e, err := s.Get(ctx, p, id)
	if err != nil {
		return carbon.Result{}, err
	}
	return s.Calculate(e.PageKey, e.Monthly(), e.PeriodYear), nil
}

// Calculate runs the carbon engine and counts default factor fallbacks.
func (s *Service) Calculate(pageKey string, monthly map[int]float64, year int) carbon.Result {
	res := s.engine.Calculate(pageKey, monthly, year)
	if res.UnknownFactor {
		s.metrics.UnknownFactor(pageKey)
	}
	return res
}

// ListOwn lists the principal's own entries.
func (s *Service) ListOwn(ctx context.Context, p *authz.Principal, filter repository.EntryFilter) (*ListResult, error) {
	if err := s.gate.Require(p, authz.PermEntriesRead); err != nil {
		return nil, err
	}
	filter.OwnerID = p.ID
	return s.list(ctx, filter)
}

// ListAll lists entries across owners. An OwnerID in the filter narrows
// the result to one user.
func (s *Service) ListAll(ctx context.Context, p *authz.Principal, filter repository.EntryFilter) (*ListResult, error) {
	if err := s.gate.Require(p, authz.PermAdminEntriesRead); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter repository.EntryFilter) (*ListResult, error) {
	entries, total, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, apperror.Database("failed to list entries", err)
	}
	return &ListResult{Entries: entries, Total: total}, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.EnergyEntry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("entry")
	}
	if err != nil {
		return nil, apperror.Database("failed to load entry", err)
	}
	return e, nil
}

func copyMap(in map[string]any) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
