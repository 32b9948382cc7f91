package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

var (
	adminActor    = domain.Principal{ID: "a00000000000000000000001", Name: "Ravi", Role: domain.RoleAdmin}
	crewActor     = domain.Principal{ID: "c00000000000000000000001", Name: "Arun", Role: domain.RoleCrew}
	customerActor = domain.Principal{ID: "d00000000000000000000001", Name: "Meena", Role: domain.RoleCustomer}
)

func newBookingFixture() (*BookingService, *stubBookingRepo, *stubLedger, *recordingAudit) {
	bookings := newStubBookingRepo()
	ledger := &stubLedger{}
	audit := &recordingAudit{}
	return NewBookingService(bookings, ledger, audit, zerolog.Nop()), bookings, ledger, audit
}

func weddingInput() ports.BookingInput {
	return ports.BookingInput{
		CustomerName:  "Meena",
		CustomerPhone: "9000000001",
		EventType:     "Wedding",
		Date:          time.Date(2026, 12, 12, 18, 0, 0, 0, time.UTC),
		Amount:        25000,
		AdvanceAmount: 5000,
		Location:      "Chennai",
	}
}

func TestBookingService_Create_ComputesBalance(t *testing.T) {
	svc, _, _, audit := newBookingFixture()

	b, err := svc.Create(context.Background(), adminActor, weddingInput())
	require.NoError(t, err)

	assert.Equal(t, 20000.0, b.BalanceAmount)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, int64(1), b.Version)
	require.Equal(t, 1, audit.count())
	assert.Equal(t, domain.ActionCreate, audit.records[0].Action)
	assert.Equal(t, domain.EntityBooking, audit.records[0].Entity)
}

func TestBookingService_Create_RejectsOverpayment(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	in := weddingInput()
	in.ReceivedAmount = 30000

	_, err := svc.Create(context.Background(), adminActor, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_Create_FieldErrors(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	in := weddingInput()
	in.CustomerName = ""
	in.Amount = -1
	in.Status = "UNKNOWN"

	_, err := svc.Create(context.Background(), adminActor, in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"customerName", "status", "amount"}, fields)
}

func TestBookingService_MarkPaid_SettlesAndCreditsLedger(t *testing.T) {
	svc, _, ledger, _ := newBookingFixture()
	ctx := context.Background()
	b, err := svc.Create(ctx, adminActor, weddingInput())
	require.NoError(t, err)

	res, err := svc.MarkPaid(ctx, adminActor, b.ID, b.Version)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Booking.BalanceAmount)
	assert.Equal(t, 20000.0, res.Booking.ReceivedAmount)
	assert.Equal(t, b.Version+1, res.Booking.Version)
	assert.Equal(t, domain.BookingConfirmed, res.Booking.Status)
	require.NotNil(t, res.Ledger)
	assert.Equal(t, domain.FinanceIncome, res.Ledger.Type)
	assert.Equal(t, 20000.0, res.Ledger.Amount)
	assert.Equal(t, domain.BookingPaymentCategory, res.Ledger.Category)
	assert.Equal(t, b.ID, res.Ledger.RelatedBookingID)
	assert.Len(t, ledger.records, 1)
}

func TestBookingService_MarkPaid_KeepsLaterStatus(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()
	in := weddingInput()
	in.Status = domain.BookingCompleted
	b, err := svc.Create(ctx, adminActor, in)
	require.NoError(t, err)

	res, err := svc.MarkPaid(ctx, adminActor, b.ID, b.Version)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, res.Booking.Status)
}

func TestBookingService_MarkPaid_LedgerFailureRollsBack(t *testing.T) {
	svc, bookings, ledger, audit := newBookingFixture()
	ctx := context.Background()
	b, err := svc.Create(ctx, adminActor, weddingInput())
	require.NoError(t, err)
	created := audit.count()

	ledger.err = assert.AnError
	_, err = svc.MarkPaid(ctx, adminActor, b.ID, b.Version)
	require.ErrorIs(t, err, assert.AnError)

	stored, err := bookings.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, stored.BalanceAmount)
	assert.Equal(t, 0.0, stored.ReceivedAmount)
	assert.Equal(t, domain.BookingPending, stored.Status)
	assert.Equal(t, created, audit.count(), "a rolled back payment is not audited")

	// The retry with the current version completes the payment.
	ledger.err = nil
	res, err := svc.MarkPaid(ctx, adminActor, b.ID, stored.Version)
	require.NoError(t, err)
	require.NotNil(t, res.Ledger)
	assert.Equal(t, 20000.0, res.Ledger.Amount)
	assert.Equal(t, 0.0, res.Booking.BalanceAmount)
	assert.Len(t, ledger.records, 1)
}

func TestBookingService_MarkPaid_NothingOutstanding(t *testing.T) {
	svc, _, ledger, _ := newBookingFixture()
	ctx := context.Background()
	in := weddingInput()
	in.ReceivedAmount = 20000
	b, err := svc.Create(ctx, adminActor, in)
	require.NoError(t, err)

	res, err := svc.MarkPaid(ctx, adminActor, b.ID, b.Version)
	require.NoError(t, err)
	assert.Nil(t, res.Ledger)
	assert.Empty(t, ledger.records)
}

func TestBookingService_MarkPaid_StaleVersion(t *testing.T) {
	svc, _, ledger, _ := newBookingFixture()
	ctx := context.Background()
	b, err := svc.Create(ctx, adminActor, weddingInput())
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, adminActor, b.ID, b.Version)
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, adminActor, b.ID, b.Version)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, ledger.records, 1)
}

func TestBookingService_MarkPaid_ConcurrentCallsCreditOnce(t *testing.T) {
	svc, _, ledger, _ := newBookingFixture()
	ctx := context.Background()
	b, err := svc.Create(ctx, adminActor, weddingInput())
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MarkPaid(ctx, adminActor, b.ID, b.Version)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, domain.ErrConflict)
			conflicts++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicts)
	require.Len(t, ledger.records, 1)
	assert.Equal(t, 20000.0, ledger.records[0].Amount)
}

func TestBookingService_Update_VersionConflict(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()
	b, err := svc.Create(ctx, adminActor, weddingInput())
	require.NoError(t, err)

	confirmed := domain.BookingConfirmed
	updated, err := svc.Update(ctx, adminActor, b.ID, b.Version, ports.BookingPatch{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)

	_, err = svc.Update(ctx, adminActor, b.ID, b.Version, ports.BookingPatch{Status: &confirmed})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestBookingService_Update_RecomputesBalance(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()
	b, err := svc.Create(ctx, adminActor, weddingInput())
	require.NoError(t, err)

	received := 7500.0
	updated, err := svc.Update(ctx, crewActor, b.ID, b.Version, ports.BookingPatch{ReceivedAmount: &received})
	require.NoError(t, err)
	assert.Equal(t, 12500.0, updated.BalanceAmount)
}

func TestBookingService_List_CustomerFilterCannotBeOverridden(t *testing.T) {
	svc, repo, _, _ := newBookingFixture()
	ctx := context.Background()

	mine := weddingInput()
	mine.CustomerID = customerActor.ID
	_, err := svc.Create(ctx, adminActor, mine)
	require.NoError(t, err)
	other := weddingInput()
	other.CustomerID = "d00000000000000000000099"
	_, err = svc.Create(ctx, adminActor, other)
	require.NoError(t, err)

	got, err := svc.List(ctx, customerActor, ports.ListBookingsInput{CustomerID: other.CustomerID})
	require.NoError(t, err)
	assert.Equal(t, customerActor.ID, repo.lastList.CustomerID)
	require.Len(t, got, 1)
	assert.Equal(t, customerActor.ID, got[0].CustomerID)

	all, err := svc.List(ctx, adminActor, ports.ListBookingsInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBookingService_List_InvalidStatus(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	_, err := svc.List(context.Background(), adminActor, ports.ListBookingsInput{Status: "DONE"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_Get_HidesOtherCustomersBookings(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	ctx := context.Background()
	in := weddingInput()
	in.CustomerID = "d00000000000000000000099"
	b, err := svc.Create(ctx, adminActor, in)
	require.NoError(t, err)

	_, err = svc.Get(ctx, customerActor, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.Get(ctx, crewActor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestBookingService_Delete(t *testing.T) {
	svc, repo, _, audit := newBookingFixture()
	ctx := context.Background()
	b, err := svc.Create(ctx, adminActor, weddingInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, adminActor, b.ID, b.Version+1), domain.ErrConflict)
	require.NoError(t, svc.Delete(ctx, adminActor, b.ID, b.Version))
	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.ActionDelete, audit.records[audit.count()-1].Action)
}
