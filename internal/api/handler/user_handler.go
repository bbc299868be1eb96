package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/pkg/clientip"
)

// errorResponse is the canonical error envelope, documented here for the API
// schema; the actual rendering happens in the central error handler.
type errorResponse struct {
	Error string `json:"error"`
}

// UserHandler exposes the authenticated self-service surface.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type updateProfileRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type updateAvatarRequest struct {
	ProfilePicture string `json:"profile_picture" validate:"required"`
}

// Profile returns the caller's record minus password hash and secrets.
//
// @Summary      Get own profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Profile(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial self-service update. The target account is
// always the authenticated principal's own.
//
// @Summary      Update own profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, err = h.userService.UpdateProfile(c.Request().Context(), principal, ports.ProfileUpdateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, clientip.FromRequest(c.Request()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User updated successfully"})
}

// UpdateAvatar replaces the caller's profile picture reference.
//
// @Summary      Update profile picture
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAvatarRequest  true  "New picture reference"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Router       /user/profile/picture [put]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateAvatarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateAvatar(c.Request().Context(), principal.UserID, req.ProfilePicture)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Session reports the caller's role.
//
// @Summary      Get session role
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /session [get]
func (h *UserHandler) Session(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"role": principal.Role})
}
