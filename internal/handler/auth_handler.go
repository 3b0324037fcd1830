package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"userhub/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a user signup request.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents a user login request. Both form and JSON bodies
// are accepted.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RefreshRequest is the JSON fallback body for refresh and logout when the
// Token header is absent.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ResetPasswordRequestBody asks for a reset link to be mailed.
type ResetPasswordRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordBody sets a new password with a reset token.
type ResetPasswordBody struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ResetLinkResponse echoes the reset link so test flows need no inbox.
type ResetLinkResponse struct {
	Message   string `json:"message"`
	ResetLink string `json:"reset_link"`
}

// Signup godoc
// @Summary Sign up a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 200 {object} service.TokenPair
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Signup(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Login godoc
// @Summary Login with username and password
// @Tags auth
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh godoc
// @Summary Rotate a refresh token for a new token pair
// @Tags auth
// @Produce json
// @Param Token header string false "Refresh token"
// @Param request body RefreshRequest false "Fallback body"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := refreshTokenFrom(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing refresh token")
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout godoc
// @Summary Revoke a refresh token
// @Tags auth
// @Produce json
// @Param Token header string false "Refresh token"
// @Param request body RefreshRequest false "Fallback body"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := refreshTokenFrom(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing refresh token")
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RequestPasswordReset godoc
// @Summary Mail a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequestBody true "Account email"
// @Success 200 {object} ResetLinkResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/reset-password-request [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req ResetPasswordRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	link, err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ResetLinkResponse{
		Message:   "Password reset email sent",
		ResetLink: link,
	})
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordBody true "Reset token and new password"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password reset successful"})
}

// refreshTokenFrom reads the refresh token from the Token header, falling
// back to a JSON body.
func refreshTokenFrom(c echo.Context) string {
	if token := c.Request().Header.Get("Token"); token != "" {
		return token
	}
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}
