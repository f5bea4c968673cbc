package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lengsovandara168/Agri-Tech-2/controllers"
	"github.com/lengsovandara168/Agri-Tech-2/middleware"
)

// RegisterChatRoutes sets up the chat routes behind the session middleware
func RegisterChatRoutes(e *echo.Echo, chatController *controllers.ChatController, users middleware.UserFinder) {
	chat := e.Group("/api/chat")
	chat.Use(middleware.RequireSession(users))

	chat.GET("/chats", chatController.ListChats)
	chat.DELETE("/chats", chatController.DeleteChat)
	chat.GET("/load/:chatId", chatController.LoadChat)
	chat.POST("/rename", chatController.RenameChat)
	chat.DELETE("/delete-all", chatController.DeleteAllChats)
	chat.POST("/get-response", chatController.GetResponse)
}
