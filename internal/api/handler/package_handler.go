package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/core/ports"
)

// PackageHandler serves the priced event packages shown on the public site.
type PackageHandler struct {
	service ports.PackageService
}

func NewPackageHandler(service ports.PackageService) *PackageHandler {
	return &PackageHandler{service: service}
}

type createPackageRequest struct {
	Name      string   `json:"name"  validate:"required"`
	Price     float64  `json:"price" validate:"gte=0"`
	Features  []string `json:"features"`
	IsPopular bool     `json:"isPopular"`
}

type updatePackageRequest struct {
	ID        string   `json:"id"    validate:"required"`
	Name      *string  `json:"name"  validate:"omitnil,min=1"`
	Price     *float64 `json:"price" validate:"omitnil,gte=0"`
	Features  []string `json:"features"`
	IsPopular *bool    `json:"isPopular"`
}

// @Summary      List event packages
// @Tags         packages
// @Produce      json
// @Success      200  {array}  domain.EventPackage
// @Router       /api/packages [get]
func (h *PackageHandler) List(c echo.Context) error {
	pkgs, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}

// @Summary      Create an event package
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        body  body      createPackageRequest  true  "Package"
// @Success      201   {object}  domain.EventPackage
// @Failure      400   {object}  errorResponse
// @Router       /api/packages [post]
func (h *PackageHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createPackageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pkg, err := h.service.Create(c.Request().Context(), actor, ports.PackageInput{
		Name:      req.Name,
		Price:     req.Price,
		Features:  req.Features,
		IsPopular: req.IsPopular,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pkg)
}

// @Summary      Update an event package
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        body  body      updatePackageRequest  true  "Fields to change"
// @Success      200   {object}  domain.EventPackage
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/packages [put]
func (h *PackageHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updatePackageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pkg, err := h.service.Update(c.Request().Context(), actor, req.ID, ports.PackagePatch{
		Name:      req.Name,
		Price:     req.Price,
		Features:  req.Features,
		IsPopular: req.IsPopular,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// @Summary      Delete an event package
// @Tags         packages
// @Produce      json
// @Param        id   query     string  true  "Package id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/packages [delete]
func (h *PackageHandler) Delete(c echo.Context) error {
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
	return c.JSON(http.StatusOK, messageResponse{Message: "package deleted"})
}
