package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

func principal(role domain.Role) *domain.Principal {
	return &domain.Principal{ID: "65f0c0ffee0000000000abcd", Name: "n", Phone: "9876543210", Role: role}
}

func TestPolicy_Route(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name     string
		path     string
		who      *domain.Principal
		allow    bool
		redirect string
	}{
		{"anon admin", "/admin/dashboard", nil, false, LoginPath},
		{"anon crew", "/crew", nil, false, LoginPath},
		{"anon public", "/packages", nil, true, ""},
		{"anon customer section", "/customer/dashboard", nil, true, ""},
		{"admin on admin", "/admin/bookings", principal(domain.RoleAdmin), true, ""},
		{"crew on admin", "/admin/bookings", principal(domain.RoleCrew), false, "/crew/dashboard"},
		{"customer on admin", "/admin", principal(domain.RoleCustomer), false, LoginPath},
		{"crew on crew", "/crew/calendar", principal(domain.RoleCrew), true, ""},
		{"admin on crew", "/crew/calendar", principal(domain.RoleAdmin), true, ""},
		{"customer on crew", "/crew/inventory", principal(domain.RoleCustomer), false, LoginPath},
		{"segment aware", "/administrator", nil, true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := p.Route(tc.path, tc.who)
			assert.Equal(t, tc.allow, d.Allow)
			assert.Equal(t, tc.redirect, d.Redirect)
		})
	}
}

func TestPolicy_Route_PassesIffRoleInSurface(t *testing.T) {
	p := DefaultPolicy()
	for _, s := range p.surfaces {
		for _, role := range domain.Roles {
			d := p.Route(s.Prefix+"/x", principal(role))
			allowed := false
			for _, r := range s.Roles {
				allowed = allowed || r == role
			}
			assert.Equal(t, allowed, d.Allow, "prefix %s role %s", s.Prefix, role)
			if !d.Allow {
				assert.NotEmpty(t, d.Redirect)
			}
		}
	}
}

func TestPolicy_Authorize(t *testing.T) {
	p := DefaultPolicy()

	require.ErrorIs(t, p.Authorize(BookingsCreate, nil), domain.ErrAuthenticationRequired)
	require.ErrorIs(t, p.Authorize(BookingsCreate, principal(domain.RoleCrew)), domain.ErrAuthorizationDenied)
	require.NoError(t, p.Authorize(BookingsCreate, principal(domain.RoleAdmin)))
	require.NoError(t, p.Authorize(PackagesList, nil))
	require.NoError(t, p.Authorize(BookingsList, principal(domain.RoleCustomer)))
}

func TestPolicy_Authorize_UndeclaredDeniesEveryone(t *testing.T) {
	p := DefaultPolicy()
	for _, role := range domain.Roles {
		err := p.Authorize("reports.export", principal(role))
		assert.True(t, errors.Is(err, domain.ErrAuthorizationDenied), "role %s", role)
	}
	assert.ErrorIs(t, p.Authorize("reports.export", nil), domain.ErrAuthenticationRequired)
}

func TestPolicy_Authorize_RotationRequired(t *testing.T) {
	p := DefaultPolicy()
	who := principal(domain.RoleCrew)
	who.MustRotatePassword = true

	assert.ErrorIs(t, p.Authorize(InventoryList, who), domain.ErrPasswordRotationRequired)
	assert.NoError(t, p.Authorize(AuthPassword, who))
	assert.NoError(t, p.Authorize(AuthMe, who))
}
