package ports

import (
	"context"
	"time"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

type FinanceInput struct {
	Type             domain.FinanceType
	Amount           float64
	Category         string
	Date             time.Time
	Description      string
	RelatedBookingID string
}

type FinancePatch struct {
	Type             *domain.FinanceType
	Amount           *float64
	Category         *string
	Date             *time.Time
	Description      *string
	RelatedBookingID *string
}

type FinanceService interface {
	List(ctx context.Context) ([]*domain.FinanceRecord, error)
	Create(ctx context.Context, actor domain.Principal, in FinanceInput) (*domain.FinanceRecord, error)
	Update(ctx context.Context, actor domain.Principal, id string, version int64, patch FinancePatch) (*domain.FinanceRecord, error)
	Delete(ctx context.Context, actor domain.Principal, id string, version int64) error
}

type InventoryInput struct {
	Name          string
	Category      string
	Quantity      int
	TotalQuantity int
	Status        domain.InventoryStatus
	LastChecked   string
}

type InventoryPatch struct {
	Name          *string
	Category      *string
	Quantity      *int
	TotalQuantity *int
	Status        *domain.InventoryStatus
	LastChecked   *string
}

type InventoryService interface {
	List(ctx context.Context) ([]*domain.InventoryItem, error)
	Create(ctx context.Context, actor domain.Principal, in InventoryInput) (*domain.InventoryItem, error)
	Update(ctx context.Context, actor domain.Principal, id string, patch InventoryPatch) (*domain.InventoryItem, error)
	Delete(ctx context.Context, actor domain.Principal, id string) error
}

type PackageInput struct {
	Name      string
	Price     float64
	Features  []string
	IsPopular bool
}

type PackagePatch struct {
	Name      *string
	Price     *float64
	Features  []string
	IsPopular *bool
}

type PackageService interface {
	List(ctx context.Context) ([]*domain.EventPackage, error)
	Create(ctx context.Context, actor domain.Principal, in PackageInput) (*domain.EventPackage, error)
	Update(ctx context.Context, actor domain.Principal, id string, patch PackagePatch) (*domain.EventPackage, error)
	Delete(ctx context.Context, actor domain.Principal, id string) error
}

type SettingService interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, actor domain.Principal, key, value string) (domain.Setting, error)
}
