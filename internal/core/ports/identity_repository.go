package ports

import (
	"context"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// IdentityRepository is the credential store.
type IdentityRepository interface {
	// Create inserts a new identity; a duplicate phone yields domain.ErrAlreadyExists.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	// FindByPhoneSuffix returns the identity whose stored phone ends with
	// the given normalized digits.
	FindByPhoneSuffix(ctx context.Context, digits string) (*domain.Identity, error)
	List(ctx context.Context) ([]*domain.Identity, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	// UpdateProfile overwrites the non-credential fields of identity.
	UpdateProfile(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, mustRotate bool) error
	Delete(ctx context.Context, id string) (*domain.Identity, error)
}
