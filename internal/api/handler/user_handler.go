package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

// UserHandler serves identity listing, registration and profile edits.
type UserHandler struct {
	authService ports.AuthService
	userService ports.UserService
}

func NewUserHandler(authService ports.AuthService, userService ports.UserService) *UserHandler {
	return &UserHandler{authService: authService, userService: userService}
}

type registerRequest struct {
	Name            string `json:"name"            validate:"required,max=100"`
	Phone           string `json:"phone"           validate:"required,phone"`
	Password        string `json:"password"        validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type provisionRequest struct {
	Name   string  `json:"name"   validate:"required,max=100"`
	Phone  string  `json:"phone"  validate:"required,phone"`
	Role   string  `json:"role"   validate:"required,oneof=ADMIN CREW"`
	Salary float64 `json:"salary" validate:"gte=0"`
}

type provisionResponse struct {
	User              *domain.Identity `json:"user"`
	TemporaryPassword string           `json:"temporaryPassword"`
}

type updateUserRequest struct {
	ID       string   `json:"id"       validate:"required"`
	Name     *string  `json:"name"     validate:"omitnil,min=1,max=100"`
	Phone    *string  `json:"phone"    validate:"omitnil,phone"`
	WhatsApp *string  `json:"whatsapp" validate:"omitnil,max=15"`
	Pincode  *string  `json:"pincode"  validate:"omitnil,omitempty,len=6,numeric"`
	City     *string  `json:"city"`
	State    *string  `json:"state"`
	Avatar   *string  `json:"avatar"`
	Role     *string  `json:"role"     validate:"omitnil,oneof=ADMIN CREW CUSTOMER"`
	Salary   *float64 `json:"salary"   validate:"omitnil,gte=0"`
}

// List returns every identity.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.Identity
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Register is the public customer sign-up.
//
// @Summary      Register a customer
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Customer details"
// @Success      201   {object}  domain.Identity
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Provision creates a team identity with a temporary password. The password
// is only ever returned here.
//
// @Summary      Provision a team member
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      provisionRequest  true  "Team member details"
// @Success      201   {object}  provisionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users/provision [post]
func (h *UserHandler) Provision(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req provisionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Provision(c.Request().Context(), actor, ports.ProvisionInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Role:   domain.Role(req.Role),
		Salary: req.Salary,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, provisionResponse{User: res.Identity, TemporaryPassword: res.TemporaryPassword})
}

// Update edits a profile. Non-admins may only edit themselves and may not
// touch role or salary.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.Identity
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	patch := ports.ProfilePatch{
		Name:     req.Name,
		Phone:    req.Phone,
		WhatsApp: req.WhatsApp,
		Pincode:  req.Pincode,
		City:     req.City,
		State:    req.State,
		Avatar:   req.Avatar,
		Salary:   req.Salary,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.userService.Update(c.Request().Context(), actor, req.ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes an identity.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   query     string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, _, err := queryID(c, false)
	if err != nil {
		return err
	}

	if err := h.userService.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}
