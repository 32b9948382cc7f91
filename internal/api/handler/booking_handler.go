package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/api/metrics"
	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	CustomerID     string   `json:"customerId"`
	CustomerName   string   `json:"customerName"   validate:"required,max=100"`
	CustomerPhone  string   `json:"customerPhone"  validate:"omitempty,phone"`
	EventType      string   `json:"eventType"      validate:"required"`
	Date           string   `json:"date"           validate:"required"`
	PackageID      string   `json:"packageId"`
	DJPackage      string   `json:"djPackage"`
	Status         string   `json:"status"         validate:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	Amount         float64  `json:"amount"         validate:"gte=0"`
	AdvanceAmount  float64  `json:"advanceAmount"  validate:"gte=0"`
	ReceivedAmount float64  `json:"receivedAmount" validate:"gte=0"`
	Location       string   `json:"location"`
	Notes          string   `json:"notes"          validate:"max=500"`
	CrewAssigned   []string `json:"crewAssigned"`
}

type updateBookingRequest struct {
	ID             string   `json:"id"             validate:"required"`
	Version        int64    `json:"version"        validate:"required,gt=0"`
	CustomerID     *string  `json:"customerId"`
	CustomerName   *string  `json:"customerName"   validate:"omitnil,min=1,max=100"`
	CustomerPhone  *string  `json:"customerPhone"  validate:"omitnil,omitempty,phone"`
	EventType      *string  `json:"eventType"`
	Date           *string  `json:"date"`
	PackageID      *string  `json:"packageId"`
	DJPackage      *string  `json:"djPackage"`
	Status         *string  `json:"status"         validate:"omitnil,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	Amount         *float64 `json:"amount"         validate:"omitnil,gte=0"`
	AdvanceAmount  *float64 `json:"advanceAmount"  validate:"omitnil,gte=0"`
	ReceivedAmount *float64 `json:"receivedAmount" validate:"omitnil,gte=0"`
	Location       *string  `json:"location"`
	Notes          *string  `json:"notes"          validate:"omitnil,max=500"`
	CrewAssigned   []string `json:"crewAssigned"`
}

type payBookingRequest struct {
	Version int64 `json:"version" validate:"required,gt=0"`
}

type paymentResponse struct {
	Booking *domain.Booking       `json:"booking"`
	Ledger  *domain.FinanceRecord `json:"ledger,omitempty"`
}

// List returns bookings visible to the caller. Customers only ever see
// their own, whatever the query says.
//
// @Summary      List bookings
// @Tags         bookings
// @Produce      json
// @Param        customerId  query     string  false  "Owning customer id"
// @Param        status      query     string  false  "Booking status"
// @Success      200         {array}   domain.Booking
// @Failure      401         {object}  errorResponse
// @Router       /api/bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	bookings, err := h.service.List(c.Request().Context(), actor, ports.ListBookingsInput{
		CustomerID: c.QueryParam("customerId"),
		Status:     c.QueryParam("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// Get handles GET /api/bookings/:id.
//
// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Booking id"
// @Success      200  {object}  domain.Booking
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/bookings/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	booking, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

// Create handles POST /api/bookings. The balance is always computed
// server-side.
//
// @Summary      Create a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      createBookingRequest  true  "Booking"
// @Success      201   {object}  domain.Booking
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}

	booking, err := h.service.Create(c.Request().Context(), actor, ports.BookingInput{
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		EventType:      req.EventType,
		Date:           date,
		PackageID:      req.PackageID,
		DJPackage:      req.DJPackage,
		Status:         domain.BookingStatus(req.Status),
		Amount:         req.Amount,
		AdvanceAmount:  req.AdvanceAmount,
		ReceivedAmount: req.ReceivedAmount,
		Location:       req.Location,
		Notes:          req.Notes,
		CrewAssigned:   req.CrewAssigned,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, booking)
}

// Update handles PUT /api/bookings. The request must carry the version that
// was read; a stale version is a 409.
//
// @Summary      Update a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      updateBookingRequest  true  "Fields to change"
// @Success      200   {object}  domain.Booking
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/bookings [put]
func (h *BookingHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return err
	}

	patch := ports.BookingPatch{
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		EventType:      req.EventType,
		Date:           date,
		PackageID:      req.PackageID,
		DJPackage:      req.DJPackage,
		Amount:         req.Amount,
		AdvanceAmount:  req.AdvanceAmount,
		ReceivedAmount: req.ReceivedAmount,
		Location:       req.Location,
		Notes:          req.Notes,
		CrewAssigned:   req.CrewAssigned,
	}
	if req.Status != nil {
		status := domain.BookingStatus(*req.Status)
		patch.Status = &status
	}

	booking, err := h.service.Update(c.Request().Context(), actor, req.ID, req.Version, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

// Delete handles DELETE /api/bookings?id=&version=.
//
// @Summary      Delete a booking
// @Tags         bookings
// @Produce      json
// @Param        id       query     string   true  "Booking id"
// @Param        version  query     integer  true  "Version read by the caller"
// @Success      200      {object}  messageResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /api/bookings [delete]
func (h *BookingHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, version, err := queryID(c, true)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, id, version); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "booking deleted"})
}

// Pay settles the outstanding balance and credits the ledger once.
//
// @Summary      Mark a booking as paid
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Booking id"
// @Param        body  body      payBookingRequest  true  "Version read by the caller"
// @Success      200   {object}  paymentResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/bookings/{id}/pay [post]
func (h *BookingHandler) Pay(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req payBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.service.MarkPaid(c.Request().Context(), actor, c.Param("id"), req.Version)
	if err != nil {
		return err
	}
	if res.Ledger != nil {
		metrics.PaymentsSettledTotal.Inc()
	}
	return c.JSON(http.StatusOK, paymentResponse{Booking: res.Booking, Ledger: res.Ledger})
}
