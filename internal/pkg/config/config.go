package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const minSecretLength = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// UIDir holds the built admin, crew and public pages. Empty disables
	// static serving.
	UIDir string `env:"UI_DIR"`

	Session SessionConfig
	OTP     OTPConfig
	Audit   AuditConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Seed    SeedConfig

	LoginRatePerMinute int    `env:"LOGIN_RATE_PER_MINUTE, default=10"`
	PincodeAPIURL      string `env:"PINCODE_API_URL,       default=https://api.postalpincode.in"`
}

type SessionConfig struct {
	Secret       string `env:"SESSION_SECRET, required"`
	SecureCookie bool   `env:"SESSION_SECURE_COOKIE, default=true"`
	Domain       string `env:"SESSION_DOMAIN"`
}

type OTPConfig struct {
	TTL         time.Duration `env:"OTP_TTL,          default=5m"`
	MaxAttempts int           `env:"OTP_MAX_ATTEMPTS, default=5"`
	// DevEcho returns issued codes in the API response. Refused outside
	// development.
	DevEcho bool `env:"OTP_DEV_ECHO, default=false"`
}

// SeedConfig names the ADMIN created on startup when none exists. An empty
// phone disables seeding.
type SeedConfig struct {
	AdminName  string `env:"BOOTSTRAP_ADMIN_NAME,  default=Administrator"`
	AdminPhone string `env:"BOOTSTRAP_ADMIN_PHONE"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
	Buffer  int `env:"AUDIT_BUFFER,  default=256"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=vetri_dj"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether ENV selects the development profile.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if len(c.Session.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.OTP.DevEcho && !c.IsDevelopment() {
		errs = append(errs, errors.New("OTP_DEV_ECHO is only allowed with ENV=development"))
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	if c.Seed.AdminPhone != "" && c.Seed.AdminName == "" {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_NAME must not be empty when BOOTSTRAP_ADMIN_PHONE is set"))
	}
	if c.LoginRatePerMinute <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}
