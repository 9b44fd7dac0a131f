package authz

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/identity"
)

// Resolver turns a credential into a Principal.
type Resolver struct {
	verifier identity.Verifier
	profiles repository.ProfileRepository
}

func NewResolver(verifier identity.Verifier, profiles repository.ProfileRepository) *Resolver {
	return &Resolver{verifier: verifier, profiles: profiles}
}

// Resolve verifies the token and loads role and active flag from the
// profile. A caller without a profile is an active user.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	id, err := r.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, apperror.Authentication("invalid or expired token")
		}
		log.Errorf("[Auth] Identity verification failed: %v", err)
		return nil, apperror.Internal("identity verification failed", err)
	}

	p := &Principal{ID: id.UserID, Email: id.Email, Role: RoleUser, IsActive: true}

	profile, err := r.profiles.GetByID(ctx, id.UserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, apperror.Database("failed to load user profile", err)
	default:
		if role, ok := ParseRole(profile.Role); ok {
			p.Role = role
		} else {
			log.Warnf("[Auth] Unknown role %q for user %s, treating as %s", profile.Role, profile.ID, RoleUser)
		}
		p.IsActive = profile.IsActive
		if p.Email == "" {
			p.Email = profile.Email
		}
	}

	if !p.IsActive {
		return nil, apperror.Deactivated()
	}
	return p, nil
}
