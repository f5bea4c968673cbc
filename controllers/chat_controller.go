package controllers

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lengsovandara168/Agri-Tech-2/middleware"
	"github.com/lengsovandara168/Agri-Tech-2/models"
	"github.com/lengsovandara168/Agri-Tech-2/repositories"
	"github.com/lengsovandara168/Agri-Tech-2/services"
)

const maxTitleLength = 40

// ChatController handles conversation endpoints. Every handler runs behind
// the session middleware, so the owning user is always present.
type ChatController struct {
	chats  *repositories.ChatRepository
	gemini *services.GeminiService
	logger *log.Logger
}

// NewChatController creates a new chat controller
func NewChatController(chats *repositories.ChatRepository, gemini *services.GeminiService) *ChatController {
	return &ChatController{
		chats:  chats,
		gemini: gemini,
		logger: log.New(os.Stdout, "[CHAT] ", log.LstdFlags),
	}
}

// ListChats returns the user's chats for the sidebar, newest first.
func (cc *ChatController) ListChats(c echo.Context) error {
	user := middleware.SessionUser(c)

	chats, err := cc.chats.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		cc.logger.Printf("Failed to list chats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to list chats",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"chats": chats})
}

// DeleteChat removes a single owned chat.
func (cc *ChatController) DeleteChat(c echo.Context) error {
	user := middleware.SessionUser(c)

	var req models.DeleteChatRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Missing chatId",
		})
	}

	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid chatId",
		})
	}

	if err := cc.chats.Delete(c.Request().Context(), chatID, user.ID); err != nil {
		cc.logger.Printf("Failed to delete chat: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to delete chat",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// LoadChat returns the messages of an owned chat, oldest first.
func (cc *ChatController) LoadChat(c echo.Context) error {
	user := middleware.SessionUser(c)

	chatID, err := primitive.ObjectIDFromHex(c.Param("chatId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid chatId",
		})
	}

	chat, err := cc.chats.FindByIDAndUser(c.Request().Context(), chatID, user.ID)
	if err != nil {
		if err == repositories.ErrChatNotFound {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Chat not found",
			})
		}
		cc.logger.Printf("Failed to load chat: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to load chat",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"messages": chat.Messages})
}

// RenameChat changes the title of an owned chat.
func (cc *ChatController) RenameChat(c echo.Context) error {
	user := middleware.SessionUser(c)

	var req models.RenameChatRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Missing chatId or newTitle",
		})
	}

	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid chatId",
		})
	}

	if err := cc.chats.Rename(c.Request().Context(), chatID, user.ID, req.NewTitle); err != nil && err != repositories.ErrChatNotFound {
		cc.logger.Printf("Failed to rename chat: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to rename chat",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Chat renamed successfully.",
	})
}

// DeleteAllChats removes every chat owned by the user.
func (cc *ChatController) DeleteAllChats(c echo.Context) error {
	user := middleware.SessionUser(c)

	if err := cc.chats.DeleteAllForUser(c.Request().Context(), user.ID); err != nil {
		cc.logger.Printf("Failed to delete all chats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to delete all chats",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// GetResponse runs one exchange: stores the user's message (and image, if
// any), queries Gemini, stores the assistant's reply, and returns it. A new
// chat is created when no chatId is supplied.
func (cc *ChatController) GetResponse(c echo.Context) error {
	user := middleware.SessionUser(c)
	ctx := c.Request().Context()

	var req models.ChatMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"response": "Invalid request body.",
		})
	}

	if req.Message == "" && req.Image == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"response": "Please enter a message or upload an image.",
		})
	}

	// Resolve or create the chat
	var chatID primitive.ObjectID
	var newChat *models.Chat
	if req.ChatID == "" {
		title := req.Message
		if title == "" {
			title = "[Image]"
		}
		if len(title) > maxTitleLength {
			title = title[:maxTitleLength]
		}

		created, err := cc.chats.Create(ctx, user.ID, title)
		if err != nil {
			cc.logger.Printf("Failed to create chat: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"response": "Error processing request.",
			})
		}
		chatID = created.ID
		newChat = created
	} else {
		id, err := primitive.ObjectIDFromHex(req.ChatID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"response": "Invalid chatId.",
			})
		}
		chatID = id
	}

	mimeType := req.ImageMimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	// Save the uploaded image, if any
	var imagePath string
	if req.Image != "" {
		saved, err := saveChatImage(req.Image)
		if err != nil {
			cc.logger.Printf("Failed to save uploaded image: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"response": "Error processing request.",
			})
		}
		imagePath = saved
	}

	// Generate the AI response
	var reply string
	var err error
	switch {
	case req.Image != "" && req.Message != "":
		reply, err = cc.gemini.QueryTextWithImage(ctx, req.Message, req.Image, mimeType)
	case req.Image != "":
		reply, err = cc.gemini.QueryImage(ctx, req.Image, mimeType)
	default:
		reply, err = cc.gemini.QueryText(ctx, req.Message)
	}
	if err != nil {
		cc.logger.Printf("Gemini query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"response": "Error processing request.",
		})
	}
	if reply == "" {
		reply = "Sorry, I could not generate a response."
	}

	userText := req.Message
	if userText == "" {
		userText = "[Image]"
	}

	now := time.Now()
	userMessage := models.Message{
		ID:        uuid.NewString(),
		Sender:    "user",
		Message:   userText,
		ImagePath: imagePath,
		Embedding: cc.gemini.EmbedText(ctx, userText),
		Timestamp: now,
	}
	assistantMessage := models.Message{
		ID:        uuid.NewString(),
		Sender:    "assistant",
		Message:   reply,
		Embedding: cc.gemini.EmbedText(ctx, reply),
		Timestamp: now,
	}

	if err := cc.chats.AppendMessages(ctx, chatID, user.ID, userMessage, assistantMessage); err != nil {
		cc.logger.Printf("Failed to store messages: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"response": "Error processing request.",
		})
	}

	response := map[string]interface{}{"response": reply}
	if newChat != nil {
		response["newChat"] = map[string]interface{}{
			"chatId": newChat.ID.Hex(),
			"title":  newChat.Title,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// saveChatImage decodes a base64 image and stores it in the upload folder,
// returning the path served by the static route.
func saveChatImage(data string) (string, error) {
	uploadDir := os.Getenv("UPLOAD_FOLDER")
	if uploadDir == "" {
		uploadDir = filepath.Join("uploads", "chat")
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", err
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image: %w", err)
	}

	filename := fmt.Sprintf("%d_%s.jpg", time.Now().UnixNano(), strings.Split(uuid.NewString(), "-")[0])
	fullPath := filepath.Join(uploadDir, filename)

	if err := os.WriteFile(fullPath, decoded, 0644); err != nil {
		return "", err
	}

	return "/" + filepath.ToSlash(fullPath), nil
}
