package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/lengsovandara168/Agri-Tech-2/models"
	"github.com/lengsovandara168/Agri-Tech-2/services"
	"github.com/lengsovandara168/Agri-Tech-2/utils"
)

// AuthController contains authentication logic
type AuthController struct {
	auth   *services.AuthService
	logger *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{
		auth:   auth,
		logger: log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// SendOTP starts a signup: validates the request, stages the pending
// registration, and emails its one-time code.
func (ac *AuthController) SendOTP(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	err := ac.auth.StartSignup(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return ac.errorResponse(c, err, "Failed to send OTP")
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "OTP sent to your email. Please check your inbox.",
	})
}

// VerifyOTP confirms a signup: on a matching code the pending registration
// becomes a durable verified account.
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	_, err := ac.auth.ConfirmSignup(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return ac.errorResponse(c, err, "Verification failed")
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Account verified and created successfully",
	})
}

// Login verifies credentials and issues the session cookie.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	user, err := ac.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return ac.errorResponse(c, err, "Login failed")
	}

	c.SetCookie(utils.NewSessionCookie(user.ID.Hex()))

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		User:    user.Info(),
	})
}

// Logout clears the session cookie. It succeeds even when no session
// existed; there is no server-side session state to tear down.
func (ac *AuthController) Logout(c echo.Context) error {
	c.SetCookie(utils.ClearSessionCookie())

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Logged out",
	})
}

// errorResponse maps domain errors to their fixed HTTP status and user-safe
// message. Anything unrecognized becomes an opaque 500 with the endpoint's
// fallback message; internals are never echoed to the caller.
func (ac *AuthController) errorResponse(c echo.Context, err error, fallback string) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   validationErr.Message,
		})
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, models.Response{
			Success: false,
			Error:   conflictErr.Message,
		})
	}

	switch {
	case errors.Is(err, services.ErrOTPNotFound),
		errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrOTPMismatch),
		errors.Is(err, services.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, services.ErrAccountNotVerified):
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Error:   err.Error(),
		})
	}

	ac.logger.Printf("%s: %v", fallback, err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Success: false,
		Error:   fallback,
	})
}
