package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type SettingService struct {
	repo  ports.SettingRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
}

func NewSettingService(repo ports.SettingRepository, audit ports.AuditRecorder, log zerolog.Logger) *SettingService {
	return &SettingService{repo: repo, audit: audit, log: log}
}

// All returns every setting as a key/value map.
func (s *SettingService) All(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, st := range settings {
		out[st.Key] = st.Value
	}
	return out, nil
}

// Set upserts one setting, validating the well-known keys.
func (s *SettingService) Set(ctx context.Context, actor domain.Principal, key, value string) (domain.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Setting{}, domain.InvalidField("key", "key is required")
	}
	if err := validateSetting(key, value); err != nil {
		return domain.Setting{}, err
	}

	saved, err := s.repo.Upsert(ctx, domain.Setting{Key: key, Value: value})
	if err != nil {
		return domain.Setting{}, fmt.Errorf("set %s: %w", key, err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionUpdate, domain.EntitySetting, key, "setting changed: "+key)
	return saved, nil
}

func validateSetting(key, value string) error {
	switch key {
	case domain.SettingUPIID:
		// UPI handles look like name@bank, so the address parser is a fair check.
		if _, err := mail.ParseAddress(value); err != nil || !strings.Contains(value, "@") {
			return domain.InvalidField("value", "invalid UPI ID format (usually email-like)")
		}
	case domain.SettingBusinessName:
		if strings.TrimSpace(value) == "" {
			return domain.InvalidField("value", "business name is required")
		}
	case domain.SettingContactPhone:
		if !domain.ValidPhone(value) {
			return domain.InvalidField("value", "invalid mobile number")
		}
	}
	return nil
}
