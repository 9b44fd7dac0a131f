package identity

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
)

// APIKeyVerifier resolves X-API-Key credentials by their SHA-256 hash.
type APIKeyVerifier struct {
	profiles repository.ProfileRepository
}

func NewAPIKeyVerifier(profiles repository.ProfileRepository) *APIKeyVerifier {
	return &APIKeyVerifier{profiles: profiles}
}

func (v *APIKeyVerifier) Verify(ctx context.Context, key string) (Identity, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Identity{}, ErrInvalidToken
	}
	profile, err := v.profiles.GetByAPIKeyHash(ctx, models.HashAPIKey(key))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, err
	}
	return Identity{UserID: profile.ID, Email: profile.Email}, nil
}
