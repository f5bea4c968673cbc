// Package services contains the application's business logic: the signup /
// login gateway and the Gemini client.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lengsovandara168/Agri-Tech-2/models"
	"github.com/lengsovandara168/Agri-Tech-2/repositories"
	"github.com/lengsovandara168/Agri-Tech-2/utils"
)

// PendingTTL is how long a signup may remain unconfirmed.
const PendingTTL = 10 * time.Minute

// UserStore is the durable account store consumed by the gateway. Absent
// accounts are reported as (nil, nil); uniqueness violations on Create as
// repositories.ErrDuplicateUser.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	Create(ctx context.Context, username, email, passwordHash string, isVerified bool) (*models.User, error)
}

// OTPSender delivers a one-time code to the user.
type OTPSender interface {
	SendOTP(email, code string) error
}

// AuthService orchestrates signup-start, signup-confirm, and login. It is
// the only component exposed to the HTTP layer.
type AuthService struct {
	users   UserStore
	pending *repositories.PendingRegistrationStore
	sender  OTPSender
	logger  *log.Logger

	// generateOTP is swappable in tests.
	generateOTP func() string
}

// NewAuthService creates the gateway with the production OTP generator.
func NewAuthService(users UserStore, pending *repositories.PendingRegistrationStore, sender OTPSender) *AuthService {
	return &AuthService{
		users:       users,
		pending:     pending,
		sender:      sender,
		logger:      log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
		generateOTP: utils.GenerateOTP,
	}
}

// StartSignup validates the request, stages a pending registration under the
// submitted email, and emails its one-time code. A repeated start for the
// same email replaces the prior pending record, silently invalidating any
// previously issued code. No account is created yet.
func (s *AuthService) StartSignup(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return &ValidationError{Message: "All fields are required"}
	}

	email, err := utils.SanitizeEmail(email)
	if err != nil {
		return &ValidationError{Message: "Invalid email format"}
	}

	if len(password) < 6 {
		return &ValidationError{Message: "Password must be at least 6 characters"}
	}

	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		if existing.Email == email {
			return &ConflictError{Message: "Email already registered"}
		}
		return &ConflictError{Message: "Username already taken"}
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	otp := s.generateOTP()

	s.pending.Put(email, models.PendingRegistration{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		OTP:          otp,
		ExpiresAt:    time.Now().Add(PendingTTL),
	}, PendingTTL)

	if err := s.sender.SendOTP(email, otp); err != nil {
		s.logger.Printf("Failed to send OTP to %s: %v", utils.MaskEmail(email), err)
		return fmt.Errorf("failed to send OTP: %w", err)
	}

	s.logger.Printf("OTP sent to %s", utils.MaskEmail(email))
	return nil
}

// ConfirmSignup checks the submitted code against the pending registration
// and, on match, promotes it to a durable verified account. The pending
// record survives a mismatch (retry until expiry) but is purged on expiry
// and on successful confirmation.
func (s *AuthService) ConfirmSignup(ctx context.Context, email, otp string) (*models.User, error) {
	email = strings.TrimSpace(email)
	otp = strings.TrimSpace(otp)

	if email == "" || otp == "" {
		return nil, &ValidationError{Message: "Missing email or OTP"}
	}

	rec, ok := s.pending.Get(email)
	if !ok {
		return nil, ErrOTPNotFound
	}

	if time.Now().After(rec.ExpiresAt) {
		s.pending.Delete(email)
		return nil, ErrOTPExpired
	}

	if rec.OTP != otp {
		return nil, ErrOTPMismatch
	}

	user, err := s.users.Create(ctx, rec.Username, rec.Email, rec.PasswordHash, true)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateUser) {
			return nil, &ConflictError{Message: "Email or username already registered"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.pending.Delete(email)
	s.logger.Printf("Account created for %s", utils.MaskEmail(email))
	return user, nil
}

// Login verifies the credentials and returns the account. Unknown username
// and wrong password both yield ErrInvalidCredentials so callers cannot
// enumerate usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &ValidationError{Message: "Missing username or password"}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}

	return user, nil
}
