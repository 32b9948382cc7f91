package ports

import (
	"context"
	"time"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// ListBookingsInput carries caller-supplied filters. For CUSTOMER callers
// CustomerID is always replaced by the caller's own id.
type ListBookingsInput struct {
	CustomerID string
	Status     string
}

// BookingInput is a full booking as submitted on create.
type BookingInput struct {
	CustomerID     string
	CustomerName   string
	CustomerPhone  string
	EventType      string
	Date           time.Time
	PackageID      string
	DJPackage      string
	Status         domain.BookingStatus
	Amount         float64
	AdvanceAmount  float64
	ReceivedAmount float64
	Location       string
	Notes          string
	CrewAssigned   []string
}

// BookingPatch is a partial update; nil fields are left unchanged.
type BookingPatch struct {
	CustomerID     *string
	CustomerName   *string
	CustomerPhone  *string
	EventType      *string
	Date           *time.Time
	PackageID      *string
	DJPackage      *string
	Status         *domain.BookingStatus
	Amount         *float64
	AdvanceAmount  *float64
	ReceivedAmount *float64
	Location       *string
	Notes          *string
	CrewAssigned   []string
}

// PaymentResult is the settled booking and the ledger entry it produced.
// Ledger is nil when nothing was outstanding.
type PaymentResult struct {
	Booking *domain.Booking
	Ledger  *domain.FinanceRecord
}

type BookingService interface {
	List(ctx context.Context, actor domain.Principal, in ListBookingsInput) ([]*domain.Booking, error)
	Get(ctx context.Context, actor domain.Principal, id string) (*domain.Booking, error)
	Create(ctx context.Context, actor domain.Principal, in BookingInput) (*domain.Booking, error)
	Update(ctx context.Context, actor domain.Principal, id string, version int64, patch BookingPatch) (*domain.Booking, error)
	Delete(ctx context.Context, actor domain.Principal, id string, version int64) error
	MarkPaid(ctx context.Context, actor domain.Principal, id string, version int64) (*PaymentResult, error)
}
