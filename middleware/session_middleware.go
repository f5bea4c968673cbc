// middleware/session_middleware.go
package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lengsovandara168/Agri-Tech-2/models"
	"github.com/lengsovandara168/Agri-Tech-2/utils"
)

// UserFinder looks up an account by its identifier. Absent accounts are
// reported as (nil, nil).
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequireSession guards privileged routes. The session cookie carries only
// the account identifier, so account existence is re-checked against the
// durable store on every request; a missing or malformed cookie is treated
// as unauthenticated, never as an error.
func RequireSession(users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := utils.DecodeSessionCookie(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Success: false,
					Error:   "Unauthorized",
				})
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Success: false,
					Error:   "Failed to verify session",
				})
			}
			if user == nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Success: false,
					Error:   "Unauthorized",
				})
			}

			c.Set("user", user)
			return next(c)
		}
	}
}

// SessionUser returns the account stashed by RequireSession.
func SessionUser(c echo.Context) *models.User {
	user, _ := c.Get("user").(*models.User)
	return user
}
