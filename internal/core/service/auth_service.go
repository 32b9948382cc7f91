package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

const (
	otpDigits         = 6
	minPasswordLength = 6
	defaultOTPTTL     = 5 * time.Minute
	defaultOTPTries   = 5
)

// AuthOptions tunes the authenticator.
type AuthOptions struct {
	OTPTTL         time.Duration
	OTPMaxAttempts int
	// OTPDevEcho returns the generated code to the requester. Development only.
	OTPDevEcho bool
	BcryptCost int
}

// AuthService implements password login, OTP login and credential changes.
type AuthService struct {
	identities ports.IdentityRepository
	otps       ports.OTPStore
	sender     ports.OTPSender
	audit      ports.AuditRecorder
	opts       AuthOptions
	log        zerolog.Logger
	now        func() time.Time

	// timingPad is compared against when no identity matched, so a miss
	// costs the same as a wrong password.
	timingPad []byte
}

func NewAuthService(
	identities ports.IdentityRepository,
	otps ports.OTPStore,
	sender ports.OTPSender,
	audit ports.AuditRecorder,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	if opts.OTPMaxAttempts <= 0 {
		opts.OTPMaxAttempts = defaultOTPTries
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	pad, err := bcrypt.GenerateFromPassword([]byte(rand.Text()), opts.BcryptCost)
	if err != nil {
		log.Warn().Err(err).Msg("failed to build timing pad hash")
	}
	return &AuthService{
		identities: identities,
		otps:       otps,
		sender:     sender,
		audit:      audit,
		opts:       opts,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		timingPad:  pad,
	}
}

// LoginTeam authenticates an admin or crew member by phone or id plus password.
func (s *AuthService) LoginTeam(ctx context.Context, identifier, password string) (*domain.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrCredentialMismatch
	}

	identity, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("team login: %w", err)
	}

	if identity == nil || !identity.Role.IsTeam() || identity.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(s.timingPad, []byte(password))
		return nil, domain.ErrCredentialMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		s.log.Info().Str("identity_id", identity.ID).Msg("team login rejected")
		return nil, domain.ErrCredentialMismatch
	}

	s.audit.Record(ctx, identity.ID, domain.ActionUpdate, domain.EntityUser, identity.ID, "user logged in: "+identity.Name)
	s.log.Info().Str("identity_id", identity.ID).Str("role", string(identity.Role)).Msg("team login")
	return identity, nil
}

// findByIdentifier returns nil, nil when nothing matches.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error) {
	if domain.IsObjectIDHex(identifier) {
		identity, err := s.identities.FindByID(ctx, identifier)
		switch {
		case err == nil:
			return identity, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	phone := domain.NormalizePhone(identifier)
	if !domain.ValidPhone(phone) {
		return nil, nil
	}
	identity, err := s.identities.FindByPhoneSuffix(ctx, phone)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return identity, err
}

// RequestOTP issues a one-time code for phone and hands it to the sender.
func (s *AuthService) RequestOTP(ctx context.Context, rawPhone string) (*ports.OTPChallenge, error) {
	phone := domain.NormalizePhone(rawPhone)
	if !domain.ValidPhone(phone) {
		return nil, domain.InvalidField("phone", "must be a valid 10-digit mobile number")
	}

	code, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("request otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("request otp: hash: %w", err)
	}
	if err := s.otps.Issue(ctx, phone, string(hash), s.opts.OTPTTL); err != nil {
		return nil, fmt.Errorf("request otp: store: %w", err)
	}
	if err := s.sender.Send(ctx, phone, code); err != nil {
		s.log.Error().Err(err).Str("phone", maskPhone(phone)).Msg("otp delivery failed")
		return nil, fmt.Errorf("request otp: deliver: %w", domain.ErrUpstreamUnavailable)
	}

	challenge := &ports.OTPChallenge{Phone: phone, ExpiresIn: s.opts.OTPTTL}
	if s.opts.OTPDevEcho {
		challenge.DevCode = code
	}
	return challenge, nil
}

// LoginCustomer verifies an OTP and returns the customer for phone,
// provisioning one on first use.
func (s *AuthService) LoginCustomer(ctx context.Context, rawPhone, code string) (*domain.Identity, error) {
	phone := domain.NormalizePhone(rawPhone)
	if !domain.ValidPhone(phone) {
		return nil, domain.InvalidField("phone", "must be a valid 10-digit mobile number")
	}
	if err := s.verifyOTP(ctx, phone, code); err != nil {
		return nil, err
	}

	identity, err := s.identities.FindByPhoneSuffix(ctx, phone)
	if errors.Is(err, domain.ErrNotFound) {
		identity, err = s.provisionCustomer(ctx, phone)
	}
	if err != nil {
		return nil, fmt.Errorf("customer login: %w", err)
	}

	if identity.Role != domain.RoleCustomer {
		s.log.Warn().Str("identity_id", identity.ID).Msg("otp login attempted for team identity")
		return nil, domain.ErrCredentialMismatch
	}

	s.audit.Record(ctx, identity.ID, domain.ActionUpdate, domain.EntityUser, identity.ID, "customer logged in: "+identity.Name)
	return identity, nil
}

func (s *AuthService) verifyOTP(ctx context.Context, phone, code string) error {
	if len(code) != otpDigits {
		return domain.ErrCredentialMismatch
	}

	entry, err := s.otps.Reserve(ctx, phone)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrCredentialMismatch
	}
	if err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}

	// The attempt is already counted, so parallel guesses cannot share a slot.
	if entry.Attempts > s.opts.OTPMaxAttempts {
		if err := s.otps.Consume(ctx, phone); err != nil {
			s.log.Warn().Err(err).Msg("failed to discard exhausted otp")
		}
		return domain.ErrCredentialMismatch
	}

	if bcrypt.CompareHashAndPassword([]byte(entry.CodeHash), []byte(code)) != nil {
		return domain.ErrCredentialMismatch
	}

	if err := s.otps.Consume(ctx, phone); err != nil {
		s.log.Warn().Err(err).Msg("failed to consume otp")
	}
	return nil
}

func (s *AuthService) provisionCustomer(ctx context.Context, phone string) (*domain.Identity, error) {
	now := s.now()
	created, err := s.identities.Create(ctx, &domain.Identity{
		Name:       domain.GuestCustomerName,
		Phone:      phone,
		Role:       domain.RoleCustomer,
		JoinedDate: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost a race with a concurrent first login for the same phone.
		return s.identities.FindByPhoneSuffix(ctx, phone)
	}
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.SystemActor, domain.ActionCreate, domain.EntityUser, created.ID, "customer provisioned on first otp login")
	s.log.Info().Str("identity_id", created.ID).Msg("customer provisioned")
	return created, nil
}

// ChangePassword replaces the caller's password after checking the current one.
// Identities without a password (OTP-only customers) may set one with an
// empty currentPassword.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Principal, currentPassword, newPassword string) (*domain.Identity, error) {
	if len(newPassword) < minPasswordLength {
		return nil, domain.InvalidField("newPassword", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	identity, err := s.identities.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}

	if identity.PasswordHash != "" || currentPassword != "" {
		if identity.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(currentPassword)) != nil {
			return nil, domain.InvalidField("currentPassword", "does not match").Because(domain.ErrCredentialMismatch)
		}
	}
	if identity.MustRotatePassword && newPassword == currentPassword {
		return nil, domain.InvalidField("newPassword", "must differ from the temporary password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.identities.UpdatePassword(ctx, identity.ID, string(hash), false); err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}

	identity.PasswordHash = string(hash)
	identity.MustRotatePassword = false
	identity.UpdatedAt = s.now()

	s.audit.Record(ctx, identity.ID, domain.ActionUpdate, domain.EntityUser, identity.ID, "user changed password: "+identity.Name)
	return identity, nil
}

// Register creates a customer from the public sign-up form.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	phone := domain.NormalizePhone(in.Phone)
	if !domain.ValidPhone(phone) {
		return nil, domain.InvalidField("phone", "must be a valid 10-digit mobile number")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.InvalidField("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash: %w", err)
	}

	now := s.now()
	created, err := s.identities.Create(ctx, &domain.Identity{
		Name:         normalizeName(in.Name),
		Phone:        phone,
		Role:         domain.RoleCustomer,
		PasswordHash: string(hash),
		JoinedDate:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.audit.Record(ctx, domain.SystemActor, domain.ActionCreate, domain.EntityUser, created.ID, "user registered: "+created.Name)
	return created, nil
}

// Provision creates an admin or crew identity with a random temporary
// password that must be rotated on first login.
func (s *AuthService) Provision(ctx context.Context, actor domain.Principal, in ports.ProvisionInput) (*ports.ProvisionResult, error) {
	return s.provisionTeam(ctx, actor.ID, in)
}

// BootstrapAdmin provisions the first ADMIN of an empty deployment. It
// returns nil without writing anything once any ADMIN exists.
func (s *AuthService) BootstrapAdmin(ctx context.Context, name, phone string) (*ports.ProvisionResult, error) {
	n, err := s.identities.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if n > 0 {
		return nil, nil
	}
	res, err := s.provisionTeam(ctx, domain.SystemActor, ports.ProvisionInput{Name: name, Phone: phone, Role: domain.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	s.log.Info().Str("identity_id", res.Identity.ID).Str("phone", maskPhone(res.Identity.Phone)).Msg("bootstrap admin provisioned")
	return res, nil
}

func (s *AuthService) provisionTeam(ctx context.Context, actorID string, in ports.ProvisionInput) (*ports.ProvisionResult, error) {
	if !in.Role.IsTeam() {
		return nil, domain.InvalidField("role", "must be ADMIN or CREW")
	}
	phone := domain.NormalizePhone(in.Phone)
	if !domain.ValidPhone(phone) {
		return nil, domain.InvalidField("phone", "must be a valid 10-digit mobile number")
	}

	temporary := rand.Text()
	hash, err := bcrypt.GenerateFromPassword([]byte(temporary), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("provision: hash: %w", err)
	}

	now := s.now()
	created, err := s.identities.Create(ctx, &domain.Identity{
		Name:               normalizeName(in.Name),
		Phone:              phone,
		Role:               in.Role,
		PasswordHash:       string(hash),
		MustRotatePassword: true,
		Salary:             in.Salary,
		JoinedDate:         now,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}

	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.EntityUser, created.ID, fmt.Sprintf("%s provisioned: %s", created.Role, created.Name))
	return &ports.ProvisionResult{Identity: created, TemporaryPassword: temporary}, nil
}

// generateOTP returns a uniformly random zero-padded six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func maskPhone(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
