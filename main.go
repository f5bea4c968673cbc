package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/lengsovandara168/Agri-Tech-2/config"
	"github.com/lengsovandara168/Agri-Tech-2/controllers"
	"github.com/lengsovandara168/Agri-Tech-2/middleware"
	"github.com/lengsovandara168/Agri-Tech-2/repositories"
	"github.com/lengsovandara168/Agri-Tech-2/routes"
	"github.com/lengsovandara168/Agri-Tech-2/services"
	"github.com/lengsovandara168/Agri-Tech-2/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to database
	client := config.ConnectDB()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"https://generativelanguage.googleapis.com"},
		AllowInlineJS:  false,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	userRepo := repositories.NewUserRepository(client)
	chatRepo := repositories.NewChatRepository(client)
	pendingStore := repositories.NewPendingRegistrationStore()

	// Initialize services
	authService := services.NewAuthService(userRepo, pendingStore, utils.NewEmailSender())
	geminiService := services.NewGeminiService()

	// Initialize controllers
	authController := controllers.NewAuthController(authService)
	chatController := controllers.NewChatController(chatRepo, geminiService)

	// Register routes
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterChatRoutes(e, chatController, userRepo)

	// Ensure uploads directory exists
	os.MkdirAll("uploads/chat", 0755)
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
