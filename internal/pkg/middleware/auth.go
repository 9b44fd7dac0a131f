package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/usercontext"
)

// Authenticator resolves the caller of API requests. Bearer tokens go to
// Tokens, X-API-Key headers to APIKeys.
type Authenticator struct {
	Tokens  *authz.Resolver
	APIKeys *authz.Resolver
	Metrics *metrics.Metrics
}

// RequireAuth resolves the caller and stores it in the request context.
// Requests without usable credentials fail with 401.
func (a *Authenticator) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := a.resolve(c)
		if err != nil {
			if e, ok := apperror.As(err); ok && e.ClientError() {
				a.Metrics.AuthFailure(e.Code)
			}
			return err
		}
		usercontext.SetPrincipal(c, p)
		return c.Next()
	}
}

func (a *Authenticator) resolve(c *fiber.Ctx) (*authz.Principal, error) {
	if key := strings.TrimSpace(c.Get("X-API-Key")); key != "" && a.APIKeys != nil {
		return a.APIKeys.Resolve(c.UserContext(), key)
	}

	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		return nil, apperror.Authentication("missing authorization header")
	}
	scheme, token, found := strings.Cut(auth, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, apperror.Authentication("invalid authorization header")
	}
	return a.Tokens.Resolve(c.UserContext(), token)
}

// RequirePermission rejects callers whose role lacks perm.
func RequirePermission(gate *authz.Gate, perm authz.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := gate.Require(usercontext.GetPrincipal(c), perm); err != nil {
			return err
		}
		return c.Next()
	}
}
