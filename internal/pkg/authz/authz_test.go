package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/database"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/identity"
)

func newGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate()
	require.NoError(t, err)
	return g
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestPermissionMatrix(t *testing.T) {
	g := newGate(t)

	matrix := map[Permission][]Role{
		PermCarbonCalculate:  {RoleViewer, RoleUser, RoleManager, RoleAdmin},
		PermEntriesRead:      {RoleViewer, RoleUser, RoleManager, RoleAdmin},
		PermEntriesWrite:     {RoleUser, RoleManager, RoleAdmin},
		PermFilesWrite:       {RoleUser, RoleManager, RoleAdmin},
		PermAdminEntriesRead: {RoleAdmin},
		PermAdminStats:       {RoleAdmin},
		PermEntriesReview:    {RoleAdmin},
		PermUsersManage:      {RoleAdmin},
	}

	for perm, allowed := range matrix {
		for _, role := range Roles {
			want := false
			for _, a := range allowed {
				if a == role {
					want = true
				}
			}
			assert.Equal(t, want, g.Allowed(role, perm), "%s %s", role, perm)
		}
	}
}

func TestPermissions_IncludesInherited(t *testing.T) {
	g := newGate(t)
	assert.ElementsMatch(t, []Permission{PermCarbonCalculate, PermEntriesRead}, g.Permissions(RoleViewer))
	assert.ElementsMatch(t, g.Permissions(RoleUser), g.Permissions(RoleManager))
	assert.Len(t, g.Permissions(RoleAdmin), 8)
	assert.Empty(t, g.Permissions(Role("ghost")))
}

func TestRequire(t *testing.T) {
	g := newGate(t)

	err := g.Require(nil, PermEntriesRead)
	assert.Equal(t, apperror.KindAuthentication, apperror.KindOf(err))

	err = g.Require(&Principal{ID: "u", Role: RoleAdmin, IsActive: false}, PermEntriesRead)
	assert.ErrorIs(t, err, apperror.Deactivated())

	err = g.Require(&Principal{ID: "u", Role: RoleUser, IsActive: true}, PermEntriesReview)
	assert.ErrorIs(t, err, apperror.InsufficientPermissions())

	assert.NoError(t, g.Require(&Principal{ID: "u", Role: RoleAdmin, IsActive: true}, PermEntriesReview))
}

func TestCheckOwnership(t *testing.T) {
	g := newGate(t)
	owner := &Principal{ID: "owner", Role: RoleUser, IsActive: true}
	other := &Principal{ID: "other", Role: RoleManager, IsActive: true}
	admin := &Principal{ID: "root", Role: RoleAdmin, IsActive: true}

	assert.NoError(t, g.CheckOwnership(owner, "owner", "entry"))
	assert.NoError(t, g.CheckOwnership(admin, "owner", "entry"))

	err := g.CheckOwnership(other, "owner", "entry")
	assert.ErrorIs(t, err, apperror.NotOwner("entry"))
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 403, e.HTTPStatus())

	assert.Error(t, g.CheckOwnership(&Principal{Role: RoleUser}, "", "entry"))
}

type stubVerifier struct {
	id  identity.Identity
	err error
}

func (s stubVerifier) Verify(context.Context, string) (identity.Identity, error) {
	return s.id, s.err
}

func newProfiles(t *testing.T) repository.ProfileRepository {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)
	return repository.NewProfileRepository(db)
}

func TestResolve_MissingProfileDefaultsToActiveUser(t *testing.T) {
	r := NewResolver(stubVerifier{id: identity.Identity{UserID: "u1", Email: "a@b.c"}}, newProfiles(t))

	p, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, &Principal{ID: "u1", Email: "a@b.c", Role: RoleUser, IsActive: true}, p)
}

func TestResolve_UsesProfileRole(t *testing.T) {
	profiles := newProfiles(t)
	require.NoError(t, profiles.Create(context.Background(), &models.Profile{ID: "u1", Email: "admin@b.c", Role: models.ROLE_ADMIN, IsActive: true}))
	r := NewResolver(stubVerifier{id: identity.Identity{UserID: "u1"}}, profiles)

	p, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, p.Role)
	assert.Equal(t, "admin@b.c", p.Email)
}

func TestResolve_DeactivatedProfile(t *testing.T) {
	profiles := newProfiles(t)
	require.NoError(t, profiles.Create(context.Background(), &models.Profile{ID: "u1", Role: models.ROLE_USER, IsActive: false}))
	r := NewResolver(stubVerifier{id: identity.Identity{UserID: "u1"}}, profiles)

	_, err := r.Resolve(context.Background(), "token")
	assert.ErrorIs(t, err, apperror.Deactivated())
}

func TestResolve_RejectedToken(t *testing.T) {
	r := NewResolver(stubVerifier{err: identity.ErrInvalidToken}, newProfiles(t))
	_, err := r.Resolve(context.Background(), "bad")
	assert.Equal(t, apperror.KindAuthentication, apperror.KindOf(err))
}

func TestResolve_ProviderFailureIsInternal(t *testing.T) {
	r := NewResolver(stubVerifier{err: errors.New("connection refused")}, newProfiles(t))
	_, err := r.Resolve(context.Background(), "token")
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}
