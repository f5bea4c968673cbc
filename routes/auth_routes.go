package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lengsovandara168/Agri-Tech-2/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/send-otp", authController.SendOTP)
	e.POST("/api/auth/verify-otp", authController.VerifyOTP)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/logout", authController.Logout)
}
