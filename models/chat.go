// models/chat.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single exchange entry embedded in a chat document.
type Message struct {
	ID        string    `json:"id" bson:"id"`
	Sender    string    `json:"sender" bson:"sender"` // "user" or "assistant"
	Message   string    `json:"message" bson:"message"`
	ImagePath string    `json:"imagePath,omitempty" bson:"imagePath,omitempty"`
	Embedding []float64 `json:"-" bson:"embedding,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Chat model
type Chat struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Title     string             `json:"title" bson:"title"`
	Messages  []Message          `json:"messages" bson:"messages"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ChatSummary is the sidebar listing view of a chat.
type ChatSummary struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Title     string             `json:"title" bson:"title"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type RenameChatRequest struct {
	ChatID   string `json:"chatId" validate:"required"`
	NewTitle string `json:"newTitle" validate:"required"`
}

type DeleteChatRequest struct {
	ChatID string `json:"chatId" validate:"required"`
}

type ChatMessageRequest struct {
	ChatID        string `json:"chatId"`
	Message       string `json:"message"`
	Image         string `json:"image"` // base64, optional
	ImageMimeType string `json:"imageMimeType"`
}
