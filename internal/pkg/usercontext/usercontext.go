package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
)

// KeyPrincipal is the Locals key holding the resolved *authz.Principal.
const KeyPrincipal = "principal"

// SetPrincipal stores the caller for the rest of the request.
func SetPrincipal(c *fiber.Ctx, p *authz.Principal) {
	c.Locals(KeyPrincipal, p)
}

// GetPrincipal returns the caller, or nil for unauthenticated requests.
func GetPrincipal(c *fiber.Ctx) *authz.Principal {
	if p, ok := c.Locals(KeyPrincipal).(*authz.Principal); ok {
		return p
	}
	return nil
}

// GetUserID returns the caller's id, or an empty string if none is set.
func GetUserID(c *fiber.Ctx) string {
	if p := GetPrincipal(c); p != nil {
		return p.ID
	}
	return ""
}

// IsAdmin checks if the current caller is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetPrincipal(c).IsAdmin()
}
