package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lengsovandara168/Agri-Tech-2/config"
	"github.com/lengsovandara168/Agri-Tech-2/models"
)

// ErrDuplicateUser is returned by Create when the unique index on email or
// username rejects the insert.
var ErrDuplicateUser = errors.New("email or username already registered")

// UserRepository is the durable account store backed by MongoDB. Uniqueness
// of email and username is enforced by the collection's unique indexes.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) *UserRepository {
	return &UserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

// FindByUsername returns the account with the given username, or nil if
// absent.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmailOrUsername returns the first account matching either field, or
// nil if absent. Used to reject signups that collide with existing accounts.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"email": email},
		{"username": username},
	}}

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByID returns the account with the given identifier, or nil if absent
// or the identifier is malformed.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new account. A uniqueness violation on email or username
// surfaces as ErrDuplicateUser.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string, isVerified bool) (*models.User, error) {
	now := time.Now()
	user := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Email:      email,
		Password:   passwordHash,
		IsVerified: isVerified,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return &user, nil
}
