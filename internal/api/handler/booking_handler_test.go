package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type stubBookingService struct {
	listFn     func(ctx context.Context, actor domain.Principal, in ports.ListBookingsInput) ([]*domain.Booking, error)
	getFn      func(ctx context.Context, actor domain.Principal, id string) (*domain.Booking, error)
	createFn   func(ctx context.Context, actor domain.Principal, in ports.BookingInput) (*domain.Booking, error)
	updateFn   func(ctx context.Context, actor domain.Principal, id string, version int64, patch ports.BookingPatch) (*domain.Booking, error)
	deleteFn   func(ctx context.Context, actor domain.Principal, id string, version int64) error
	markPaidFn func(ctx context.Context, actor domain.Principal, id string, version int64) (*ports.PaymentResult, error)
}

func (s *stubBookingService) List(ctx context.Context, actor domain.Principal, in ports.ListBookingsInput) ([]*domain.Booking, error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubBookingService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.Booking, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubBookingService) Create(ctx context.Context, actor domain.Principal, in ports.BookingInput) (*domain.Booking, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubBookingService) Update(ctx context.Context, actor domain.Principal, id string, version int64, patch ports.BookingPatch) (*domain.Booking, error) {
	return s.updateFn(ctx, actor, id, version, patch)
}

func (s *stubBookingService) Delete(ctx context.Context, actor domain.Principal, id string, version int64) error {
	return s.deleteFn(ctx, actor, id, version)
}

func (s *stubBookingService) MarkPaid(ctx context.Context, actor domain.Principal, id string, version int64) (*ports.PaymentResult, error) {
	return s.markPaidFn(ctx, actor, id, version)
}

var (
	admin    = domain.Principal{ID: "65f000000000000000000001", Name: "Ravi", Role: domain.RoleAdmin}
	customer = domain.Principal{ID: "65f000000000000000000009", Name: "Meena", Role: domain.RoleCustomer}
)

const bookingID = "65f0000000000000000000b1"

func TestBookingHandler_ListPassesFilters(t *testing.T) {
	var got ports.ListBookingsInput
	h := NewBookingHandler(&stubBookingService{
		listFn: func(ctx context.Context, actor domain.Principal, in ports.ListBookingsInput) ([]*domain.Booking, error) {
			assert.Equal(t, customer, actor)
			got = in
			return []*domain.Booking{}, nil
		},
	})

	c, rec := newContext(http.MethodGet, "/api/bookings?customerId=someone-else&status=PENDING", "", &customer)
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "someone-else", got.CustomerID, "row filtering is the service's job")
	assert.Equal(t, "PENDING", got.Status)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBookingHandler_ListWithoutPrincipal(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{})

	c, _ := newContext(http.MethodGet, "/api/bookings", "", nil)
	assert.ErrorIs(t, h.List(c), domain.ErrAuthenticationRequired)
}

func TestBookingHandler_Create(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		createFn: func(ctx context.Context, actor domain.Principal, in ports.BookingInput) (*domain.Booking, error) {
			assert.Equal(t, time.Date(2026, 12, 4, 0, 0, 0, 0, time.UTC), in.Date)
			assert.Equal(t, domain.BookingConfirmed, in.Status)
			b := &domain.Booking{
				ID: bookingID, CustomerName: in.CustomerName, Date: in.Date, Status: in.Status,
				Amount: in.Amount, AdvanceAmount: in.AdvanceAmount, Version: 1,
			}
			require.NoError(t, b.Rebalance())
			return b, nil
		},
	})

	body := `{"customerName":"Meena","eventType":"Wedding","date":"2026-12-04","status":"CONFIRMED","amount":25000,"advanceAmount":5000}`
	c, rec := newContext(http.MethodPost, "/api/bookings", body, &admin)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var b domain.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, 20000.0, b.BalanceAmount)
}

func TestBookingHandler_CreateValidation(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{})

	cases := map[string]struct {
		body  string
		field string
	}{
		"missing name":   {`{"eventType":"Wedding","date":"2026-12-04"}`, "customerName"},
		"bad status":     {`{"customerName":"M","eventType":"Wedding","date":"2026-12-04","status":"MAYBE"}`, "status"},
		"negative money": {`{"customerName":"M","eventType":"Wedding","date":"2026-12-04","amount":-1}`, "amount"},
		"bad date":       {`{"customerName":"M","eventType":"Wedding","date":"04/12/2026"}`, "date"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/bookings", tc.body, &admin)
			assert.Contains(t, fieldsOf(t, h.Create(c)), tc.field)
		})
	}
}

func TestBookingHandler_UpdateRequiresIDAndVersion(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{})

	c, _ := newContext(http.MethodPut, "/api/bookings", `{"status":"CONFIRMED"}`, &admin)
	fields := fieldsOf(t, h.Update(c))
	assert.ElementsMatch(t, []string{"id", "version"}, fields)
}

func TestBookingHandler_UpdateConflict(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		updateFn: func(ctx context.Context, actor domain.Principal, id string, version int64, patch ports.BookingPatch) (*domain.Booking, error) {
			assert.Equal(t, bookingID, id)
			assert.Equal(t, int64(3), version)
			require.NotNil(t, patch.Status)
			assert.Equal(t, domain.BookingCompleted, *patch.Status)
			assert.Nil(t, patch.Amount)
			return nil, domain.ErrConflict
		},
	})

	c, _ := newContext(http.MethodPut, "/api/bookings", `{"id":"`+bookingID+`","version":3,"status":"COMPLETED"}`, &admin)
	assert.ErrorIs(t, h.Update(c), domain.ErrConflict)
}

func TestBookingHandler_DeleteReadsQuery(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		deleteFn: func(ctx context.Context, actor domain.Principal, id string, version int64) error {
			assert.Equal(t, bookingID, id)
			assert.Equal(t, int64(2), version)
			return nil
		},
	})

	c, rec := newContext(http.MethodDelete, "/api/bookings?id="+bookingID+"&version=2", "", &admin)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = newContext(http.MethodDelete, "/api/bookings", "", &admin)
	assert.Equal(t, []string{"id"}, fieldsOf(t, h.Delete(c)))

	c, _ = newContext(http.MethodDelete, "/api/bookings?id="+bookingID+"&version=x", "", &admin)
	assert.Equal(t, []string{"version"}, fieldsOf(t, h.Delete(c)))
}

func TestBookingHandler_Pay(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		markPaidFn: func(ctx context.Context, actor domain.Principal, id string, version int64) (*ports.PaymentResult, error) {
			assert.Equal(t, bookingID, id)
			assert.Equal(t, int64(1), version)
			return &ports.PaymentResult{
				Booking: &domain.Booking{ID: id, Amount: 25000, AdvanceAmount: 5000, ReceivedAmount: 20000, Version: 2},
				Ledger:  &domain.FinanceRecord{Type: domain.FinanceIncome, Amount: 20000, RelatedBookingID: id},
			}, nil
		},
	})

	c, rec := newContext(http.MethodPost, "/api/bookings/"+bookingID+"/pay", `{"version":1}`, &admin)
	c.SetParamNames("id")
	c.SetParamValues(bookingID)
	require.NoError(t, h.Pay(c))

	var resp paymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 20000.0, resp.Booking.ReceivedAmount)
	assert.Equal(t, 0.0, resp.Booking.BalanceAmount)
	require.NotNil(t, resp.Ledger)
	assert.Equal(t, 20000.0, resp.Ledger.Amount)
}

func TestBookingHandler_GetNotFound(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		getFn: func(ctx context.Context, actor domain.Principal, id string) (*domain.Booking, error) {
			return nil, domain.NotFound(domain.EntityBooking, id)
		},
	})

	c, _ := newContext(http.MethodGet, "/api/bookings/"+bookingID, "", &customer)
	c.SetParamNames("id")
	c.SetParamValues(bookingID)
	assert.ErrorIs(t, h.Get(c), domain.ErrNotFound)
}
