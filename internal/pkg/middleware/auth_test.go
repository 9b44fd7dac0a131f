package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/database"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/identity"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/usercontext"
)

func statusHandler(c *fiber.Ctx, err error) error {
	if e, ok := apperror.As(err); ok {
		return c.Status(e.HTTPStatus()).JSON(fiber.Map{"code": e.Code})
	}
	return c.SendStatus(fiber.StatusInternalServerError)
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)
	profiles := repository.NewProfileRepository(db)

	ctx := context.Background()
	require.NoError(t, profiles.Create(ctx, &models.Profile{ID: "viewer-1", Role: models.ROLE_VIEWER, IsActive: true}))
	require.NoError(t, profiles.Create(ctx, &models.Profile{ID: "gone-1", Role: models.ROLE_USER, IsActive: false}))
	hash := models.HashAPIKey("key-1")
	require.NoError(t, profiles.Create(ctx, &models.Profile{ID: "svc-1", Role: models.ROLE_USER, IsActive: true, APIKeyHash: &hash}))

	tokens := identity.VerifierFunc(func(_ context.Context, token string) (identity.Identity, error) {
		switch token {
		case "user", "viewer-1", "gone-1":
			return identity.Identity{UserID: token}, nil
		}
		return identity.Identity{}, identity.ErrInvalidToken
	})

	gate, err := authz.NewGate()
	require.NoError(t, err)
	auth := &Authenticator{
		Tokens:  authz.NewResolver(tokens, profiles),
		APIKeys: authz.NewResolver(identity.NewAPIKeyVerifier(profiles), profiles),
		Metrics: metrics.New(prometheus.NewRegistry()),
	}

	app := fiber.New(fiber.Config{ErrorHandler: statusHandler})
	app.Use(auth.RequireAuth())
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(usercontext.GetUserID(c))
	})
	app.Post("/write", RequirePermission(gate, authz.PermEntriesWrite), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name   string
		header map[string]string
		status int
	}{
		{"missing header", nil, fiber.StatusUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic dXNlcjpwdw=="}, fiber.StatusUnauthorized},
		{"empty bearer", map[string]string{"Authorization": "Bearer "}, fiber.StatusUnauthorized},
		{"rejected token", map[string]string{"Authorization": "Bearer nope"}, fiber.StatusUnauthorized},
		{"deactivated", map[string]string{"Authorization": "Bearer gone-1"}, fiber.StatusForbidden},
		{"valid token", map[string]string{"Authorization": "bearer user"}, fiber.StatusOK},
		{"valid api key", map[string]string{"X-API-Key": "key-1"}, fiber.StatusOK},
		{"invalid api key", map[string]string{"X-API-Key": "key-2"}, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	app := newApp(t)

	req := httptest.NewRequest("POST", "/write", nil)
	req.Header.Set("Authorization", "Bearer viewer-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("POST", "/write", nil)
	req.Header.Set("Authorization", "Bearer user")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestRequirePermission_WithoutPrincipal(t *testing.T) {
	gate, err := authz.NewGate()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: statusHandler})
	app.Get("/", RequirePermission(gate, authz.PermEntriesRead), func(c *fiber.Ctx) error {
		return errors.New("unreachable")
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
