// Package review records admin decisions on energy entries.
package review

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics/counter"
)

// Input is a validated review decision.
type Input struct {
	Status           models.ReviewStatus
	Note             string
	RequestedChanges []string
}

// Service appends reviews to the audit trail. The entry itself is never
// modified.
type Service struct {
	reviews repository.ReviewRepository
	entries repository.EntryRepository
	gate    *authz.Gate
	counter counter.Counter
}

func NewService(reviews repository.ReviewRepository, entries repository.EntryRepository, gate *authz.Gate, c counter.Counter) *Service {
	return &Service{reviews: reviews, entries: entries, gate: gate, counter: c}
}

// Review records the decision of reviewer on the entry.
func (s *Service) Review(ctx context.Context, reviewer *authz.Principal, entryID string, in Input) (*models.EntryReview, error) {
	if err := s.gate.Require(reviewer, authz.PermEntriesReview); err != nil {
		return nil, err
	}
	switch in.Status {
	case models.ReviewStatusApproved:
	case models.ReviewStatusRejected, models.ReviewStatusNeedsFix:
		if strings.TrimSpace(in.Note) == "" {
			return nil, apperror.InvalidField("note", "required_if", "note is required when status is "+string(in.Status))
		}
	default:
		return nil, apperror.InvalidField("status", "oneof", "status must be one of approved rejected needs_fix")
	}

	if err := s.ensureEntry(ctx, entryID); err != nil {
		return nil, err
	}

	r := &models.EntryReview{
		EntryID:    entryID,
		ReviewerID: reviewer.ID,
		Status:     in.Status,
		Note:       in.Note,
	}
	if len(in.RequestedChanges) > 0 {
		r.RequestedChanges = datatypes.JSONSlice[string](in.RequestedChanges)
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, apperror.Database("failed to record review", err)
	}

	counter.Add(ctx, s.counter, counter.Reviews)
	log.Infof("[Review] Entry %s marked %s by %s", entryID, in.Status, reviewer.ID)
	return r, nil
}

// History lists the reviews of an entry, newest first.
func (s *Service) History(ctx context.Context, p *authz.Principal, entryID string) ([]models.EntryReview, error) {
	if err := s.gate.Require(p, authz.PermAdminEntriesRead); err != nil {
		return nil, err
	}
	if err := s.ensureEntry(ctx, entryID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByEntry(ctx, entryID)
	if err != nil {
		return nil, apperror.Database("failed to list reviews", err)
	}
	return reviews, nil
}

func (s *Service) ensureEntry(ctx context.Context, entryID string) error {
	_, err := s.entries.GetByID(ctx, entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("entry")
	}
	if err != nil {
		return apperror.Database("failed to load entry", err)
	}
	return nil
}
