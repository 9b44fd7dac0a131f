// Package account handles admin operations on user profiles.
package account

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
)

// BulkResult reports the outcome of a bulk update.
type BulkResult struct {
	UpdatedCount int64
	UserIDs      []string
}

type Service struct {
	profiles repository.ProfileRepository
	gate     *authz.Gate
}

func NewService(profiles repository.ProfileRepository, gate *authz.Gate) *Service {
	return &Service{profiles: profiles, gate: gate}
}

// BulkSetActive activates or deactivates the given users in one statement.
// Duplicate ids are collapsed. Unknown ids are ignored and not counted.
func (s *Service) BulkSetActive(ctx context.Context, p *authz.Principal, ids []string, active bool) (*BulkResult, error) {
	if err := s.gate.Require(p, authz.PermUsersManage); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	n, err := s.profiles.SetActive(ctx, unique, active)
	if err != nil {
		return nil, apperror.Database("failed to update users", err)
	}
	log.Infof("[Account] %s set is_active=%t on %d of %d users", p.ID, active, n, len(unique))
	return &BulkResult{UpdatedCount: n, UserIDs: unique}, nil
}
