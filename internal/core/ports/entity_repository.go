package ports

import (
	"context"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// BookingFilter narrows a booking listing. An empty CustomerID means no filter.
type BookingFilter struct {
	CustomerID string
	Status     string
}

// BookingRepository persists bookings. Update and Delete are conditional on
// the version the caller read: a mismatch on an existing booking yields
// domain.ErrConflict.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking, expectedVersion int64) (*domain.Booking, error)
	Delete(ctx context.Context, id string, expectedVersion int64) (*domain.Booking, error)
}

// FinanceRepository persists ledger entries with the same version contract
// as BookingRepository.
type FinanceRepository interface {
	Create(ctx context.Context, r *domain.FinanceRecord) (*domain.FinanceRecord, error)
	FindByID(ctx context.Context, id string) (*domain.FinanceRecord, error)
	List(ctx context.Context) ([]*domain.FinanceRecord, error)
	Update(ctx context.Context, r *domain.FinanceRecord, expectedVersion int64) (*domain.FinanceRecord, error)
	Delete(ctx context.Context, id string, expectedVersion int64) (*domain.FinanceRecord, error)
}

type InventoryRepository interface {
	Create(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	FindByID(ctx context.Context, id string) (*domain.InventoryItem, error)
	List(ctx context.Context) ([]*domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	Delete(ctx context.Context, id string) (*domain.InventoryItem, error)
}

type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.EventPackage) (*domain.EventPackage, error)
	FindByID(ctx context.Context, id string) (*domain.EventPackage, error)
	List(ctx context.Context) ([]*domain.EventPackage, error)
	Update(ctx context.Context, pkg *domain.EventPackage) (*domain.EventPackage, error)
	Delete(ctx context.Context, id string) (*domain.EventPackage, error)
}

type SettingRepository interface {
	All(ctx context.Context) ([]domain.Setting, error)
	Upsert(ctx context.Context, s domain.Setting) (domain.Setting, error)
}
