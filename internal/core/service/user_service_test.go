package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

func ptr[T any](v T) *T { return &v }

func newUserFixture() (*UserService, *stubIdentityRepo, *recordingAudit) {
	repo := newStubIdentityRepo()
	audit := &recordingAudit{}
	return NewUserService(repo, audit, zerolog.Nop()), repo, audit
}

func TestUserService_Update_SelfProfile(t *testing.T) {
	svc, repo, audit := newUserFixture()
	crew := repo.seed(&domain.Identity{Name: "Arun", Phone: "9123456780", Role: domain.RoleCrew, PasswordHash: "h"})

	updated, err := svc.Update(context.Background(), crew.Principal(), crew.ID, ports.ProfilePatch{
		Name: ptr("  arun   kumar "),
		City: ptr("Madurai"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Arun Kumar", updated.Name)
	assert.Equal(t, "Madurai", updated.City)
	assert.Equal(t, "h", updated.PasswordHash)
	assert.Equal(t, 1, audit.count())
}

func TestUserService_Update_NonAdminRestrictions(t *testing.T) {
	svc, repo, _ := newUserFixture()
	crew := repo.seed(&domain.Identity{Name: "Arun", Phone: "9123456780", Role: domain.RoleCrew})
	other := repo.seed(&domain.Identity{Name: "Bala", Phone: "9123456781", Role: domain.RoleCrew})

	cases := []struct {
		name  string
		id    string
		patch ports.ProfilePatch
	}{
		{"someone else", other.ID, ports.ProfilePatch{City: ptr("Salem")}},
		{"own role", crew.ID, ports.ProfilePatch{Role: ptr(domain.RoleAdmin)}},
		{"own salary", crew.ID, ports.ProfilePatch{Salary: ptr(50000.0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), crew.Principal(), tc.id, tc.patch)
			assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)
		})
	}
}

func TestUserService_Update_AdminEditsCrew(t *testing.T) {
	svc, repo, _ := newUserFixture()
	admin := repo.seed(&domain.Identity{Name: "Ravi", Phone: "9876543210", Role: domain.RoleAdmin})
	crew := repo.seed(&domain.Identity{Name: "Arun", Phone: "9123456780", Role: domain.RoleCrew})

	updated, err := svc.Update(context.Background(), admin.Principal(), crew.ID, ports.ProfilePatch{
		Salary: ptr(18000.0),
		Phone:  ptr("+91 91234 56789"),
	})
	require.NoError(t, err)
	assert.Equal(t, 18000.0, updated.Salary)
	assert.Equal(t, "9123456789", updated.Phone)

	_, err = svc.Update(context.Background(), admin.Principal(), admin.ID, ports.ProfilePatch{Role: ptr(domain.RoleCrew)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(context.Background(), admin.Principal(), crew.ID, ports.ProfilePatch{Salary: ptr(-1.0)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_Delete(t *testing.T) {
	svc, repo, audit := newUserFixture()
	admin := repo.seed(&domain.Identity{Name: "Ravi", Phone: "9876543210", Role: domain.RoleAdmin})
	crew := repo.seed(&domain.Identity{Name: "Arun", Phone: "9123456780", Role: domain.RoleCrew})

	assert.ErrorIs(t, svc.Delete(context.Background(), admin.Principal(), admin.ID), domain.ErrValidation)
	require.NoError(t, svc.Delete(context.Background(), admin.Principal(), crew.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), admin.Principal(), crew.ID), domain.ErrNotFound)
	assert.Equal(t, 1, audit.count())
}
