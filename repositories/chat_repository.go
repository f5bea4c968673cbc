package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lengsovandara168/Agri-Tech-2/config"
	"github.com/lengsovandara168/Agri-Tech-2/models"
)

// ErrChatNotFound is returned when a chat does not exist or is not owned by
// the requesting user.
var ErrChatNotFound = errors.New("chat not found")

// ChatRepository stores conversations with their embedded messages. Every
// operation is scoped to the owning user.
type ChatRepository struct {
	collection *mongo.Collection
}

func NewChatRepository(db *mongo.Client) *ChatRepository {
	return &ChatRepository{
		collection: config.GetCollection(db, "chats"),
	}
}

// ListByUser returns the user's chats, newest first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"title": 1, "createdAt": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	chats := []models.ChatSummary{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// FindByIDAndUser returns the chat only if it belongs to the user.
func (r *ChatRepository) FindByIDAndUser(ctx context.Context, chatID, userID primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.collection.FindOne(ctx, bson.M{"_id": chatID, "userId": userID}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// Create starts a new chat with the given title.
func (r *ChatRepository) Create(ctx context.Context, userID primitive.ObjectID, title string) (*models.Chat, error) {
	now := time.Now()
	chat := models.Chat{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// AppendMessages adds messages to an owned chat.
func (r *ChatRepository) AppendMessages(ctx context.Context, chatID, userID primitive.ObjectID, messages ...models.Message) error {
	filter := bson.M{"_id": chatID, "userId": userID}
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": messages}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrChatNotFound
	}
	return nil
}

// Rename changes the title of an owned chat.
func (r *ChatRepository) Rename(ctx context.Context, chatID, userID primitive.ObjectID, title string) error {
	filter := bson.M{"_id": chatID, "userId": userID}
	update := bson.M{"$set": bson.M{"title": title, "updatedAt": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrChatNotFound
	}
	return nil
}

// Delete removes an owned chat. Deleting an absent chat is not an error.
func (r *ChatRepository) Delete(ctx context.Context, chatID, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": chatID, "userId": userID})
	return err
}

// DeleteAllForUser removes every chat owned by the user.
func (r *ChatRepository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
