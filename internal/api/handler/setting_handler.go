package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type SettingHandler struct {
	service ports.SettingService
}

func NewSettingHandler(service ports.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

type settingRequest struct {
	Key   string `json:"key"   validate:"required,max=64"`
	Value string `json:"value" validate:"max=500"`
}

// Get returns every setting as a flat key/value object.
//
// @Summary      Site settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/settings [get]
func (h *SettingHandler) Get(c echo.Context) error {
	settings, err := h.service.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// @Summary      Set a site setting
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      settingRequest  true  "Key and value"
// @Success      200   {object}  domain.Setting
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/settings [post]
func (h *SettingHandler) Set(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req settingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	setting, err := h.service.Set(c.Request().Context(), actor, req.Key, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setting)
}
