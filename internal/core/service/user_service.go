package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

// UserService manages identity profiles. Credentials are handled by AuthService.
type UserService struct {
	identities ports.IdentityRepository
	audit      ports.AuditRecorder
	log        zerolog.Logger
}

func NewUserService(identities ports.IdentityRepository, audit ports.AuditRecorder, log zerolog.Logger) *UserService {
	return &UserService{identities: identities, audit: audit, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.Identity, error) {
	return s.identities.List(ctx)
}

// Update applies a profile patch. Non-admins may only edit themselves and
// may not touch role or salary.
func (s *UserService) Update(ctx context.Context, actor domain.Principal, id string, patch ports.ProfilePatch) (*domain.Identity, error) {
	isAdmin := actor.Role == domain.RoleAdmin
	if !isAdmin && (actor.ID != id || patch.Role != nil || patch.Salary != nil) {
		return nil, domain.ErrAuthorizationDenied
	}

	identity, err := s.identities.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if patch.Name != nil {
		name := normalizeName(*patch.Name)
		if len(name) < 2 {
			return nil, domain.InvalidField("name", "must be at least 2 characters")
		}
		identity.Name = name
	}
	if patch.Phone != nil {
		phone := domain.NormalizePhone(*patch.Phone)
		if !domain.ValidPhone(phone) {
			return nil, domain.InvalidField("phone", "must be a valid 10-digit mobile number")
		}
		identity.Phone = phone
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, domain.InvalidField("role", "must be one of ADMIN CREW CUSTOMER")
		}
		if id == actor.ID && *patch.Role != actor.Role {
			return nil, domain.InvalidField("role", "cannot change your own role")
		}
		identity.Role = *patch.Role
	}
	if patch.Salary != nil {
		if *patch.Salary < 0 {
			return nil, domain.InvalidField("salary", "cannot be negative")
		}
		identity.Salary = *patch.Salary
	}
	setIf(&identity.WhatsApp, patch.WhatsApp)
	setIf(&identity.Pincode, patch.Pincode)
	setIf(&identity.City, patch.City)
	setIf(&identity.State, patch.State)
	setIf(&identity.Avatar, patch.Avatar)

	updated, err := s.identities.UpdateProfile(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit.Record(ctx, actor.ID, domain.ActionUpdate, domain.EntityUser, id, "profile updated: "+updated.Name)
	return updated, nil
}

// Delete removes an identity. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	if id == actor.ID {
		return domain.InvalidField("id", "cannot delete your own account")
	}
	deleted, err := s.identities.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionDelete, domain.EntityUser, id, "user deleted: "+deleted.Name)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
