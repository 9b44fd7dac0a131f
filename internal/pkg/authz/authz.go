// Package authz decides what a verified caller may do.
package authz

import (
	_ "embed"
	"strings"

	"github.com/ManuelReschke/EnergyLedger/app/models"
)

//go:embed model.conf
var modelText string

// Role is one of the closed set of caller roles.
type Role string

const (
	RoleViewer  Role = models.ROLE_VIEWER
	RoleUser    Role = models.ROLE_USER
	RoleManager Role = models.ROLE_MANAGER
	RoleAdmin   Role = models.ROLE_ADMIN
)

// Roles lists every role from least to most privileged.
var Roles = []Role{RoleViewer, RoleUser, RoleManager, RoleAdmin}

// ParseRole maps a stored role name to a Role. Unknown names are rejected.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) subject() string {
	return "role:" + string(r)
}

// Permission names an action on a resource, written resource:action.
type Permission string

const (
	PermCarbonCalculate  Permission = "carbon:calculate"
	PermEntriesRead      Permission = "entries:read"
	PermEntriesWrite     Permission = "entries:write"
	PermFilesWrite       Permission = "files:write"
	PermAdminEntriesRead Permission = "admin:entries:read"
	PermAdminStats       Permission = "admin:stats"
	PermEntriesReview    Permission = "entries:review"
	PermUsersManage      Permission = "users:manage"
)

// split returns the casbin object and action of a permission.
func (p Permission) split() (string, string) {
	s := string(p)
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// Principal is the resolved caller of a request.
type Principal struct {
	ID       string
	Email    string
	Role     Role
	IsActive bool
}

// IsAdmin reports whether the principal has the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
