package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type PackageService struct {
	repo  ports.PackageRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
	now   func() time.Time
}

func NewPackageService(repo ports.PackageRepository, audit ports.AuditRecorder, log zerolog.Logger) *PackageService {
	return &PackageService{repo: repo, audit: audit, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *PackageService) List(ctx context.Context) ([]*domain.EventPackage, error) {
	return s.repo.List(ctx)
}

func (s *PackageService) Create(ctx context.Context, actor domain.Principal, in ports.PackageInput) (*domain.EventPackage, error) {
	now := s.now()
	pkg := &domain.EventPackage{
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Features:  cleanFeatures(in.Features),
		IsPopular: in.IsPopular,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validatePackage(pkg); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionCreate, domain.EntityPackage, created.ID, "package created: "+created.Name)
	return created, nil
}

func (s *PackageService) Update(ctx context.Context, actor domain.Principal, id string, patch ports.PackagePatch) (*domain.EventPackage, error) {
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}

	setIf(&pkg.Name, patch.Name)
	setIf(&pkg.Price, patch.Price)
	setIf(&pkg.IsPopular, patch.IsPopular)
	if patch.Features != nil {
		pkg.Features = cleanFeatures(patch.Features)
	}
	pkg.UpdatedAt = s.now()

	if err := validatePackage(pkg); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionUpdate, domain.EntityPackage, id, "package updated: "+updated.Name)
	return updated, nil
}

func (s *PackageService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionDelete, domain.EntityPackage, id, "package deleted: "+deleted.Name)
	return nil
}

func validatePackage(pkg *domain.EventPackage) error {
	var fields []domain.FieldError
	if pkg.Name == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "name is required"})
	}
	if pkg.Price < 0 {
		fields = append(fields, domain.FieldError{Field: "price", Message: "cannot be negative"})
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}

// cleanFeatures trims entries and drops blanks.
func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
