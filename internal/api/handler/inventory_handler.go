package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type InventoryHandler struct {
	service ports.InventoryService
}

func NewInventoryHandler(service ports.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type createInventoryRequest struct {
	Name          string `json:"name"          validate:"required"`
	Category      string `json:"category"      validate:"required"`
	Quantity      int    `json:"quantity"      validate:"gte=0"`
	TotalQuantity int    `json:"totalQuantity" validate:"gte=0"`
	Status        string `json:"status"        validate:"omitempty,oneof=AVAILABLE IN_USE MAINTENANCE"`
	LastChecked   string `json:"lastChecked"`
}

type updateInventoryRequest struct {
	ID            string  `json:"id"            validate:"required"`
	Name          *string `json:"name"          validate:"omitnil,min=1"`
	Category      *string `json:"category"      validate:"omitnil,min=1"`
	Quantity      *int    `json:"quantity"      validate:"omitnil,gte=0"`
	TotalQuantity *int    `json:"totalQuantity" validate:"omitnil,gte=0"`
	Status        *string `json:"status"        validate:"omitnil,oneof=AVAILABLE IN_USE MAINTENANCE"`
	LastChecked   *string `json:"lastChecked"`
}

// @Summary      List equipment
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   domain.InventoryItem
// @Failure      403  {object}  errorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// @Summary      Add equipment
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      createInventoryRequest  true  "Item"
// @Success      201   {object}  domain.InventoryItem
// @Failure      400   {object}  errorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createInventoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.service.Create(c.Request().Context(), actor, ports.InventoryInput{
		Name:          req.Name,
		Category:      req.Category,
		Quantity:      req.Quantity,
		TotalQuantity: req.TotalQuantity,
		Status:        domain.InventoryStatus(req.Status),
		LastChecked:   req.LastChecked,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update is open to crew so stock can be checked in and out at events.
//
// @Summary      Update equipment
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      updateInventoryRequest  true  "Fields to change"
// @Success      200   {object}  domain.InventoryItem
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/inventory [put]
func (h *InventoryHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateInventoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	patch := ports.InventoryPatch{
		Name:          req.Name,
		Category:      req.Category,
		Quantity:      req.Quantity,
		TotalQuantity: req.TotalQuantity,
		LastChecked:   req.LastChecked,
	}
	if req.Status != nil {
		status := domain.InventoryStatus(*req.Status)
		patch.Status = &status
	}

	item, err := h.service.Update(c.Request().Context(), actor, req.ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// @Summary      Remove equipment
// @Tags         inventory
// @Produce      json
// @Param        id   query     string  true  "Item id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/inventory [delete]
func (h *InventoryHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, _, err := queryID(c, false)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "item deleted"})
}
