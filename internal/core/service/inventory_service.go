package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type InventoryService struct {
	repo  ports.InventoryRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
	now   func() time.Time
}

func NewInventoryService(repo ports.InventoryRepository, audit ports.AuditRecorder, log zerolog.Logger) *InventoryService {
	return &InventoryService{repo: repo, audit: audit, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *InventoryService) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	return s.repo.List(ctx)
}

func (s *InventoryService) Create(ctx context.Context, actor domain.Principal, in ports.InventoryInput) (*domain.InventoryItem, error) {
	now := s.now()
	item := &domain.InventoryItem{
		Name:          in.Name,
		Category:      in.Category,
		Quantity:      in.Quantity,
		TotalQuantity: in.TotalQuantity,
		Status:        in.Status,
		LastChecked:   in.LastChecked,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.Status == "" {
		item.Status = domain.InventoryAvailable
	}
	if err := validateInventory(item); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create inventory item: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionCreate, domain.EntityInventory, created.ID, "item added: "+created.Name)
	return created, nil
}

func (s *InventoryService) Update(ctx context.Context, actor domain.Principal, id string, patch ports.InventoryPatch) (*domain.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}

	setIf(&item.Name, patch.Name)
	setIf(&item.Category, patch.Category)
	setIf(&item.Quantity, patch.Quantity)
	setIf(&item.TotalQuantity, patch.TotalQuantity)
	setIf(&item.Status, patch.Status)
	setIf(&item.LastChecked, patch.LastChecked)
	item.UpdatedAt = s.now()

	if err := validateInventory(item); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionUpdate, domain.EntityInventory, id,
		fmt.Sprintf("%s: %d/%d %s", updated.Name, updated.Quantity, updated.TotalQuantity, updated.Status))
	return updated, nil
}

func (s *InventoryService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionDelete, domain.EntityInventory, id, "item removed: "+deleted.Name)
	return nil
}

func validateInventory(item *domain.InventoryItem) error {
	var fields []domain.FieldError
	if item.Name == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "name is required"})
	}
	if item.Category == "" {
		fields = append(fields, domain.FieldError{Field: "category", Message: "category is required"})
	}
	if item.Quantity < 0 || item.TotalQuantity < 0 {
		fields = append(fields, domain.FieldError{Field: "quantity", Message: "cannot be negative"})
	} else if item.Quantity > item.TotalQuantity {
		fields = append(fields, domain.FieldError{Field: "quantity", Message: "cannot exceed totalQuantity"})
	}
	switch item.Status {
	case domain.InventoryAvailable, domain.InventoryInUse, domain.InventoryMaintenance:
	default:
		fields = append(fields, domain.FieldError{Field: "status", Message: "must be one of AVAILABLE IN_USE MAINTENANCE"})
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}
