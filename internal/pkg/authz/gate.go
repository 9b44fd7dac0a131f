package authz

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
)

// grants holds the permissions each role adds on top of the role it inherits.
var grants = map[Role][]Permission{
	RoleViewer:  {PermCarbonCalculate, PermEntriesRead},
	RoleUser:    {PermEntriesWrite, PermFilesWrite},
	RoleAdmin:   {PermAdminEntriesRead, PermAdminStats, PermEntriesReview, PermUsersManage},
}

// inherits maps a role to the role whose permissions it includes.
var inherits = map[Role]Role{
	RoleUser:    RoleViewer,
	RoleManager: RoleUser,
	RoleAdmin:   RoleManager,
}

// Gate enforces role permissions and resource ownership.
type Gate struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer seeded with the role policies.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	var rules [][]string
	for _, role := range Roles {
		for _, perm := range grants[role] {
			obj, act := perm.split()
			rules = append(rules, []string{role.subject(), obj, act})
		}
	}
	if _, err := enforcer.AddPolicies(rules); err != nil {
		return err
	}

	var links [][]string
	for _, role := range Roles {
		if parent, ok := inherits[role]; ok {
			links = append(links, []string{role.subject(), parent.subject()})
		}
	}
	if _, err := enforcer.AddGroupingPolicies(links); err != nil {
		return err
	}
	return nil
}

// NewGate returns a gate backed by a freshly seeded enforcer.
func NewGate() (*Gate, error) {
	enforcer, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	return &Gate{enforcer: enforcer}, nil
}

// Allowed reports whether the role holds the permission.
func (g *Gate) Allowed(role Role, perm Permission) bool {
	obj, act := perm.split()
	ok, err := g.enforcer.Enforce(role.subject(), obj, act)
	if err != nil {
		log.Errorf("[Auth] Enforce %s %s failed: %v", role, perm, err)
		return false
	}
	return ok
}

// Require fails unless the active principal holds the permission.
func (g *Gate) Require(p *Principal, perm Permission) error {
	if p == nil {
		return apperror.Authentication("authentication required")
	}
	if !p.IsActive {
		return apperror.Deactivated()
	}
	if !g.Allowed(p.Role, perm) {
		log.Infof("[Auth] Denied %s for user %s with role %s", perm, p.ID, p.Role)
		return apperror.InsufficientPermissions()
	}
	return nil
}

// CheckOwnership fails unless the principal owns the resource. Admins
// pass for every resource.
func (g *Gate) CheckOwnership(p *Principal, ownerID, resource string) error {
	if p == nil {
		return apperror.Authentication("authentication required")
	}
	if p.IsAdmin() {
		return nil
	}
	if p.ID == "" || p.ID != ownerID {
		return apperror.NotOwner(resource)
	}
	return nil
}

// Permissions lists every permission the role holds, inherited ones included.
func (g *Gate) Permissions(role Role) []Permission {
	var out []Permission
	for _, r := range Roles {
		for _, perm := range grants[r] {
			if g.Allowed(role, perm) {
				out = append(out, perm)
			}
		}
	}
	return out
}
