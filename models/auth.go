// models/auth.go
package models

import "time"

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PendingRegistration holds an unconfirmed signup while its OTP is live.
// At most one exists per email; a repeated signup replaces it wholesale.
type PendingRegistration struct {
	Username     string
	Email        string
	PasswordHash string
	OTP          string
	ExpiresAt    time.Time
}
