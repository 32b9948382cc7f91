package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type FinanceHandler struct {
	service ports.FinanceService
}

func NewFinanceHandler(service ports.FinanceService) *FinanceHandler {
	return &FinanceHandler{service: service}
}

type createFinanceRequest struct {
	Type             string  `json:"type"     validate:"required,oneof=INCOME EXPENSE"`
	Amount           float64 `json:"amount"   validate:"gt=0"`
	Category         string  `json:"category" validate:"required"`
	Date             string  `json:"date"     validate:"required"`
	Description      string  `json:"description"`
	RelatedBookingID string  `json:"relatedBookingId"`
}

type updateFinanceRequest struct {
	ID               string   `json:"id"       validate:"required"`
	Version          int64    `json:"version"  validate:"required,gt=0"`
	Type             *string  `json:"type"     validate:"omitnil,oneof=INCOME EXPENSE"`
	Amount           *float64 `json:"amount"   validate:"omitnil,gt=0"`
	Category         *string  `json:"category" validate:"omitnil,min=1"`
	Date             *string  `json:"date"`
	Description      *string  `json:"description"`
	RelatedBookingID *string  `json:"relatedBookingId"`
}

// List returns the full ledger, newest first.
//
// @Summary      List finance records
// @Tags         finance
// @Produce      json
// @Success      200  {array}   domain.FinanceRecord
// @Failure      403  {object}  errorResponse
// @Router       /api/finance [get]
func (h *FinanceHandler) List(c echo.Context) error {
	records, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// @Summary      Create a finance record
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        body  body      createFinanceRequest  true  "Ledger entry"
// @Success      201   {object}  domain.FinanceRecord
// @Failure      400   {object}  errorResponse
// @Router       /api/finance [post]
func (h *FinanceHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createFinanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}

	record, err := h.service.Create(c.Request().Context(), actor, ports.FinanceInput{
		Type:             domain.FinanceType(req.Type),
		Amount:           req.Amount,
		Category:         req.Category,
		Date:             date,
		Description:      req.Description,
		RelatedBookingID: req.RelatedBookingID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

// @Summary      Update a finance record
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        body  body      updateFinanceRequest  true  "Fields to change"
// @Success      200   {object}  domain.FinanceRecord
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/finance [put]
func (h *FinanceHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateFinanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return err
	}

	patch := ports.FinancePatch{
		Amount:           req.Amount,
		Category:         req.Category,
		Date:             date,
		Description:      req.Description,
		RelatedBookingID: req.RelatedBookingID,
	}
	if req.Type != nil {
		t := domain.FinanceType(*req.Type)
		patch.Type = &t
	}

	record, err := h.service.Update(c.Request().Context(), actor, req.ID, req.Version, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// @Summary      Delete a finance record
// @Tags         finance
// @Produce      json
// @Param        id       query     string   true  "Record id"
// @Param        version  query     integer  true  "Version read by the caller"
// @Success      200      {object}  messageResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /api/finance [delete]
func (h *FinanceHandler) Delete(c echo.Context) error {
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
	return c.JSON(http.StatusOK, messageResponse{Message: "record deleted"})
}
