package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

// PincodeHandler proxies postal-code lookups used to prefill city and state.
type PincodeHandler struct {
	lookup ports.PostalLookup
}

func NewPincodeHandler(lookup ports.PostalLookup) *PincodeHandler {
	return &PincodeHandler{lookup: lookup}
}

type pincodeResponse struct {
	Pincode     string              `json:"pincode"`
	PostOffices []domain.PostOffice `json:"postOffices"`
}

// @Summary      Look up a postal code
// @Tags         pincode
// @Produce      json
// @Param        code  path      string  true  "Six digit postal code"
// @Success      200   {object}  pincodeResponse
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/pincode/{code} [get]
func (h *PincodeHandler) Lookup(c echo.Context) error {
	code := c.Param("code")
	offices, err := h.lookup.Lookup(c.Request().Context(), code)
	if err != nil {
		return err
	}
	if offices == nil {
		offices = []domain.PostOffice{}
	}
	return c.JSON(http.StatusOK, pincodeResponse{Pincode: code, PostOffices: offices})
}
