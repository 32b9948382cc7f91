package ports

import (
	"context"
	"time"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// OTPChallenge describes an issued one-time code. DevCode is only populated
// when the development echo is switched on.
type OTPChallenge struct {
	Phone     string
	ExpiresIn time.Duration
	DevCode   string
}

// RegisterInput is a customer self-registration.
type RegisterInput struct {
	Name     string
	Phone    string
	Password string
}

// ProvisionInput creates a team or customer identity on behalf of an admin.
type ProvisionInput struct {
	Name   string
	Phone  string
	Role   domain.Role
	Salary float64
}

// ProvisionResult carries the one-time temporary password; only its hash is stored.
type ProvisionResult struct {
	Identity          *domain.Identity
	TemporaryPassword string
}

// AuthService authenticates principals and manages their credentials.
type AuthService interface {
	LoginTeam(ctx context.Context, identifier, password string) (*domain.Identity, error)
	RequestOTP(ctx context.Context, phone string) (*OTPChallenge, error)
	LoginCustomer(ctx context.Context, phone, code string) (*domain.Identity, error)
	ChangePassword(ctx context.Context, actor domain.Principal, currentPassword, newPassword string) (*domain.Identity, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Identity, error)
	Provision(ctx context.Context, actor domain.Principal, in ProvisionInput) (*ProvisionResult, error)
}

// ProfilePatch holds the optional profile fields of a user update. Nil
// means unchanged.
type ProfilePatch struct {
	Name     *string
	Phone    *string
	WhatsApp *string
	Pincode  *string
	City     *string
	State    *string
	Avatar   *string
	Role     *domain.Role
	Salary   *float64
}

// UserService lists and edits identities.
type UserService interface {
	List(ctx context.Context) ([]*domain.Identity, error)
	Update(ctx context.Context, actor domain.Principal, id string, patch ProfilePatch) (*domain.Identity, error)
	Delete(ctx context.Context, actor domain.Principal, id string) error
}
