package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type FinanceService struct {
	repo  ports.FinanceRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
	now   func() time.Time
}

func NewFinanceService(repo ports.FinanceRepository, audit ports.AuditRecorder, log zerolog.Logger) *FinanceService {
	return &FinanceService{repo: repo, audit: audit, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *FinanceService) List(ctx context.Context) ([]*domain.FinanceRecord, error) {
	return s.repo.List(ctx)
}

func (s *FinanceService) Create(ctx context.Context, actor domain.Principal, in ports.FinanceInput) (*domain.FinanceRecord, error) {
	now := s.now()
	r := &domain.FinanceRecord{
		Type:             in.Type,
		Amount:           in.Amount,
		Category:         in.Category,
		Date:             in.Date,
		Description:      in.Description,
		RelatedBookingID: in.RelatedBookingID,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if r.Date.IsZero() {
		r.Date = now
	}
	if err := validateFinance(r); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("create finance record: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionCreate, domain.EntityFinance, created.ID,
		fmt.Sprintf("%s: %s (%.2f)", created.Type, created.Description, created.Amount))
	return created, nil
}

func (s *FinanceService) Update(ctx context.Context, actor domain.Principal, id string, version int64, patch ports.FinancePatch) (*domain.FinanceRecord, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update finance record: %w", err)
	}
	if r.Version != version {
		return nil, fmt.Errorf("update finance record %s: %w", id, domain.ErrConflict)
	}

	setIf(&r.Type, patch.Type)
	setIf(&r.Amount, patch.Amount)
	setIf(&r.Category, patch.Category)
	setIf(&r.Date, patch.Date)
	setIf(&r.Description, patch.Description)
	setIf(&r.RelatedBookingID, patch.RelatedBookingID)
	r.UpdatedAt = s.now()

	if err := validateFinance(r); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, r, version)
	if err != nil {
		return nil, fmt.Errorf("update finance record: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionUpdate, domain.EntityFinance, id, "updated "+updated.Description)
	return updated, nil
}

func (s *FinanceService) Delete(ctx context.Context, actor domain.Principal, id string, version int64) error {
	deleted, err := s.repo.Delete(ctx, id, version)
	if err != nil {
		return fmt.Errorf("delete finance record: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionDelete, domain.EntityFinance, id, "deleted record: "+deleted.Description)
	return nil
}

func validateFinance(r *domain.FinanceRecord) error {
	var fields []domain.FieldError
	if r.Type != domain.FinanceIncome && r.Type != domain.FinanceExpense {
		fields = append(fields, domain.FieldError{Field: "type", Message: "must be one of INCOME EXPENSE"})
	}
	if r.Amount <= 0 {
		fields = append(fields, domain.FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if r.Category == "" {
		fields = append(fields, domain.FieldError{Field: "category", Message: "category is required"})
	}
	if r.Description == "" {
		fields = append(fields, domain.FieldError{Field: "description", Message: "description is required"})
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}
