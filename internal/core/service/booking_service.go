package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

const maxNotesLength = 500

// BookingService owns bookings and the balance-due invariant.
type BookingService struct {
	bookings ports.BookingRepository
	ledger   ports.FinanceRepository
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewBookingService(bookings ports.BookingRepository, ledger ports.FinanceRepository, audit ports.AuditRecorder, log zerolog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		ledger:   ledger,
		audit:    audit,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns bookings newest first. Customers only ever see their own,
// whatever filter they asked for.
func (s *BookingService) List(ctx context.Context, actor domain.Principal, in ports.ListBookingsInput) ([]*domain.Booking, error) {
	filter := ports.BookingFilter{CustomerID: in.CustomerID, Status: in.Status}
	if actor.Role == domain.RoleCustomer {
		filter.CustomerID = actor.ID
	}
	if filter.Status != "" && !validBookingStatus(domain.BookingStatus(filter.Status)) {
		return nil, domain.InvalidField("status", "must be one of PENDING CONFIRMED COMPLETED CANCELLED")
	}
	return s.bookings.List(ctx, filter)
}

// Get returns one booking; a customer asking for someone else's booking
// gets the same not-found as for a missing one.
func (s *BookingService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleCustomer && b.CustomerID != actor.ID {
		return nil, domain.NotFound(domain.EntityBooking, id)
	}
	return b, nil
}

func (s *BookingService) Create(ctx context.Context, actor domain.Principal, in ports.BookingInput) (*domain.Booking, error) {
	now := s.now()
	b := &domain.Booking{
		CustomerID:     in.CustomerID,
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		EventType:      in.EventType,
		Date:           in.Date,
		PackageID:      in.PackageID,
		DJPackage:      in.DJPackage,
		Status:         in.Status,
		Amount:         in.Amount,
		AdvanceAmount:  in.AdvanceAmount,
		ReceivedAmount: in.ReceivedAmount,
		Location:       in.Location,
		Notes:          in.Notes,
		CrewAssigned:   in.CrewAssigned,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	if err := s.validate(b); err != nil {
		return nil, err
	}

	created, err := s.bookings.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.audit.Record(ctx, actor.ID, domain.ActionCreate, domain.EntityBooking, created.ID, "booking created for "+created.CustomerName)
	return created, nil
}

func (s *BookingService) Update(ctx context.Context, actor domain.Principal, id string, version int64, patch ports.BookingPatch) (*domain.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if b.Version != version {
		return nil, fmt.Errorf("update booking %s: %w", id, domain.ErrConflict)
	}

	setIf(&b.CustomerID, patch.CustomerID)
	setIf(&b.CustomerName, patch.CustomerName)
	setIf(&b.CustomerPhone, patch.CustomerPhone)
	setIf(&b.EventType, patch.EventType)
	setIf(&b.Date, patch.Date)
	setIf(&b.PackageID, patch.PackageID)
	setIf(&b.DJPackage, patch.DJPackage)
	setIf(&b.Status, patch.Status)
	setIf(&b.Amount, patch.Amount)
	setIf(&b.AdvanceAmount, patch.AdvanceAmount)
	setIf(&b.ReceivedAmount, patch.ReceivedAmount)
	setIf(&b.Location, patch.Location)
	setIf(&b.Notes, patch.Notes)
	if patch.CrewAssigned != nil {
		b.CrewAssigned = patch.CrewAssigned
	}
	b.UpdatedAt = s.now()

	if err := s.validate(b); err != nil {
		return nil, err
	}

	updated, err := s.bookings.Update(ctx, b, version)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.audit.Record(ctx, actor.ID, domain.ActionUpdate, domain.EntityBooking, id, "booking status: "+string(updated.Status))
	return updated, nil
}

func (s *BookingService) Delete(ctx context.Context, actor domain.Principal, id string, version int64) error {
	deleted, err := s.bookings.Delete(ctx, id, version)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	s.audit.Record(ctx, actor.ID, domain.ActionDelete, domain.EntityBooking, id, "booking deleted: "+deleted.CustomerName)
	return nil
}

// MarkPaid settles the outstanding balance and credits the ledger with it.
// The booking write is conditional on version, so of two concurrent calls
// only one reaches the ledger. A PENDING booking becomes CONFIRMED. If the
// ledger write fails the settlement is rolled back so the call can be retried.
func (s *BookingService) MarkPaid(ctx context.Context, actor domain.Principal, id string, version int64) (*ports.PaymentResult, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	if b.Version != version {
		return nil, fmt.Errorf("mark paid %s: %w", id, domain.ErrConflict)
	}
	if b.BalanceAmount <= 0 {
		return &ports.PaymentResult{Booking: b}, nil
	}

	prior := *b
	credited := b.SettleBalance()
	if b.Status == domain.BookingPending {
		b.Status = domain.BookingConfirmed
	}
	b.UpdatedAt = s.now()

	settled, err := s.bookings.Update(ctx, b, version)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	now := s.now()
	entry, err := s.ledger.Create(ctx, &domain.FinanceRecord{
		Type:             domain.FinanceIncome,
		Amount:           credited,
		Category:         domain.BookingPaymentCategory,
		Date:             now,
		Description:      fmt.Sprintf("Balance payment from %s", settled.CustomerName),
		RelatedBookingID: settled.ID,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		s.revertSettlement(ctx, &prior, settled.Version, credited)
		return nil, fmt.Errorf("mark paid: ledger: %w", err)
	}

	s.audit.Record(ctx, actor.ID, domain.ActionUpdate, domain.EntityBooking, id, fmt.Sprintf("balance of %.2f marked as paid", credited))
	s.audit.Record(ctx, actor.ID, domain.ActionCreate, domain.EntityFinance, entry.ID, fmt.Sprintf("INCOME: %s (%.2f)", entry.Description, entry.Amount))

	return &ports.PaymentResult{Booking: settled, Ledger: entry}, nil
}

// revertSettlement restores the pre-payment amounts, conditional on nobody
// having touched the booking since it was settled. It runs even when the
// request context is already cancelled.
func (s *BookingService) revertSettlement(ctx context.Context, prior *domain.Booking, settledVersion int64, credited float64) {
	prior.UpdatedAt = s.now()
	if _, err := s.bookings.Update(context.WithoutCancel(ctx), prior, settledVersion); err != nil {
		s.log.Error().Err(err).Str("booking_id", prior.ID).Float64("amount", credited).
			Msg("booking settled without ledger entry, reconcile manually")
		return
	}
	s.log.Warn().Str("booking_id", prior.ID).Float64("amount", credited).Msg("ledger entry failed, settlement rolled back")
}

func (s *BookingService) validate(b *domain.Booking) error {
	var fields []domain.FieldError
	if len(b.CustomerName) < 2 {
		fields = append(fields, domain.FieldError{Field: "customerName", Message: "customer name is required"})
	}
	if b.CustomerPhone != "" && !domain.ValidPhone(b.CustomerPhone) {
		fields = append(fields, domain.FieldError{Field: "customerPhone", Message: "must be a valid 10-digit mobile number"})
	}
	if b.EventType == "" {
		fields = append(fields, domain.FieldError{Field: "eventType", Message: "event type is required"})
	}
	if b.Date.IsZero() {
		fields = append(fields, domain.FieldError{Field: "date", Message: "invalid date"})
	}
	if b.Location == "" {
		fields = append(fields, domain.FieldError{Field: "location", Message: "location is required"})
	}
	if !validBookingStatus(b.Status) {
		fields = append(fields, domain.FieldError{Field: "status", Message: "must be one of PENDING CONFIRMED COMPLETED CANCELLED"})
	}
	if len(b.Notes) > maxNotesLength {
		fields = append(fields, domain.FieldError{Field: "notes", Message: "notes must be under 500 characters"})
	}
	for _, amt := range []struct {
		field string
		v     float64
	}{{"amount", b.Amount}, {"advanceAmount", b.AdvanceAmount}, {"receivedAmount", b.ReceivedAmount}} {
		if amt.v < 0 {
			fields = append(fields, domain.FieldError{Field: amt.field, Message: "cannot be negative"})
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return b.Rebalance()
}

func validBookingStatus(s domain.BookingStatus) bool {
	switch s {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCompleted, domain.BookingCancelled:
		return true
	}
	return false
}
