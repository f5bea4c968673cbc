// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username   string             `json:"username" bson:"username"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"password,omitempty" bson:"password"`
	IsVerified bool               `json:"isVerified" bson:"isVerified"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserInfo is the public view of a user returned after login.
type UserInfo struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Info strips the user down to the fields safe to echo back.
func (u *User) Info() *UserInfo {
	return &UserInfo{
		UserID:   u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
	}
}

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
}
