// Package access holds the single role table consulted by both the page
// route guard and the per-endpoint authorizer.
package access

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// Endpoint identifies one API operation in the policy table.
type Endpoint string

const (
	AuthMe       Endpoint = "auth.me"
	AuthPassword Endpoint = "auth.password"

	BookingsList   Endpoint = "bookings.list"
	BookingsGet    Endpoint = "bookings.get"
	BookingsCreate Endpoint = "bookings.create"
	BookingsUpdate Endpoint = "bookings.update"
	BookingsDelete Endpoint = "bookings.delete"
	BookingsPay    Endpoint = "bookings.pay"

	FinanceList   Endpoint = "finance.list"
	FinanceCreate Endpoint = "finance.create"
	FinanceUpdate Endpoint = "finance.update"
	FinanceDelete Endpoint = "finance.delete"

	InventoryList   Endpoint = "inventory.list"
	InventoryCreate Endpoint = "inventory.create"
	InventoryUpdate Endpoint = "inventory.update"
	InventoryDelete Endpoint = "inventory.delete"

	PackagesList   Endpoint = "packages.list"
	PackagesCreate Endpoint = "packages.create"
	PackagesUpdate Endpoint = "packages.update"
	PackagesDelete Endpoint = "packages.delete"

	UsersList      Endpoint = "users.list"
	UsersRegister  Endpoint = "users.register"
	UsersProvision Endpoint = "users.provision"
	UsersUpdate    Endpoint = "users.update"
	UsersDelete    Endpoint = "users.delete"

	SettingsGet    Endpoint = "settings.get"
	SettingsUpdate Endpoint = "settings.update"

	PincodeLookup Endpoint = "pincode.lookup"
)

// LoginPath is where unauthenticated navigations are sent.
const LoginPath = "/login"

// Rule is the access rule for one endpoint.
type Rule struct {
	Roles []domain.Role
	// Public endpoints need no session at all.
	Public bool
	// RotationExempt endpoints stay reachable while the principal still
	// holds a provisioned password.
	RotationExempt bool
}

// Surface gates a page path prefix.
type Surface struct {
	Prefix string
	Roles  []domain.Role
	// Fallback maps a denied role to its redirect; roles not listed go to LoginPath.
	Fallback map[domain.Role]string
}

// Decision is the outcome of a route guard check.
type Decision struct {
	Allow    bool
	Redirect string
}

// Policy is the endpoint and surface table.
type Policy struct {
	endpoints map[Endpoint]Rule
	surfaces  []Surface
}

var (
	everyone  = []domain.Role{domain.RoleAdmin, domain.RoleCrew, domain.RoleCustomer}
	team      = []domain.Role{domain.RoleAdmin, domain.RoleCrew}
	adminOnly = []domain.Role{domain.RoleAdmin}
)

// NewPolicy builds a policy from explicit tables. Surfaces are matched
// longest prefix first.
func NewPolicy(endpoints map[Endpoint]Rule, surfaces []Surface) *Policy {
	s := slices.Clone(surfaces)
	slices.SortFunc(s, func(a, b Surface) int { return len(b.Prefix) - len(a.Prefix) })
	return &Policy{endpoints: endpoints, surfaces: s}
}

// DefaultPolicy is the production table.
func DefaultPolicy() *Policy {
	return NewPolicy(map[Endpoint]Rule{
		AuthMe:       {Roles: everyone, RotationExempt: true},
		AuthPassword: {Roles: everyone, RotationExempt: true},

		BookingsList:   {Roles: everyone},
		BookingsGet:    {Roles: everyone},
		BookingsCreate: {Roles: adminOnly},
		BookingsUpdate: {Roles: adminOnly},
		BookingsDelete: {Roles: adminOnly},
		BookingsPay:    {Roles: adminOnly},

		FinanceList:   {Roles: adminOnly},
		FinanceCreate: {Roles: adminOnly},
		FinanceUpdate: {Roles: adminOnly},
		FinanceDelete: {Roles: adminOnly},

		InventoryList:   {Roles: team},
		InventoryCreate: {Roles: adminOnly},
		InventoryUpdate: {Roles: team},
		InventoryDelete: {Roles: adminOnly},

		PackagesList:   {Public: true},
		PackagesCreate: {Roles: adminOnly},
		PackagesUpdate: {Roles: adminOnly},
		PackagesDelete: {Roles: adminOnly},

		UsersList:      {Roles: adminOnly},
		UsersRegister:  {Public: true},
		UsersProvision: {Roles: adminOnly},
		UsersUpdate:    {Roles: everyone},
		UsersDelete:    {Roles: adminOnly},

		SettingsGet:    {Public: true},
		SettingsUpdate: {Roles: adminOnly},

		PincodeLookup: {Roles: everyone},
	}, []Surface{
		{
			Prefix:   "/admin",
			Roles:    adminOnly,
			Fallback: map[domain.Role]string{domain.RoleCrew: "/crew/dashboard"},
		},
		{
			// Admins may view crew pages.
			Prefix: "/crew",
			Roles:  team,
		},
	})
}

// Rule returns the declared rule for e.
func (p *Policy) Rule(e Endpoint) (Rule, bool) {
	r, ok := p.endpoints[e]
	return r, ok
}

// Authorize checks principal against the rule for e. A nil principal means
// no decodable session. Undeclared endpoints deny everyone.
func (p *Policy) Authorize(e Endpoint, principal *domain.Principal) error {
	rule, declared := p.endpoints[e]
	if declared && rule.Public {
		return nil
	}
	if principal == nil {
		return domain.ErrAuthenticationRequired
	}
	if !declared {
		return fmt.Errorf("endpoint %q has no access rule: %w", e, domain.ErrAuthorizationDenied)
	}
	if !slices.Contains(rule.Roles, principal.Role) {
		return domain.ErrAuthorizationDenied
	}
	if principal.MustRotatePassword && !rule.RotationExempt {
		return domain.ErrPasswordRotationRequired
	}
	return nil
}

// Route decides whether a page navigation to path may proceed.
func (p *Policy) Route(path string, principal *domain.Principal) Decision {
	surface, gated := p.surfaceFor(path)
	if !gated {
		return Decision{Allow: true}
	}
	if principal == nil {
		return Decision{Redirect: LoginPath}
	}
	if slices.Contains(surface.Roles, principal.Role) {
		return Decision{Allow: true}
	}
	if to, ok := surface.Fallback[principal.Role]; ok {
		return Decision{Redirect: to}
	}
	return Decision{Redirect: LoginPath}
}

// Prefixes lists the gated page prefixes.
func (p *Policy) Prefixes() []string {
	out := make([]string, 0, len(p.surfaces))
	for _, s := range p.surfaces {
		out = append(out, s.Prefix)
	}
	return out
}

func (p *Policy) surfaceFor(path string) (Surface, bool) {
	for _, s := range p.surfaces {
		if hasSegmentPrefix(path, s.Prefix) {
			return s, true
		}
	}
	return Surface{}, false
}

// hasSegmentPrefix matches "/admin" and "/admin/x" but not "/administrator".
func hasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
