package services

import "errors"

// ValidationError reports malformed input. The message is safe to show to
// the caller and never exposes internals.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness violation on email or username.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// OTP flow errors. Each collapses to one fixed user-facing message.
var (
	ErrOTPNotFound = errors.New("OTP not found or expired. Please request a new one.")
	ErrOTPExpired  = errors.New("OTP has expired. Please request a new one.")
	ErrOTPMismatch = errors.New("Invalid OTP. Please check and try again.")
)

// ErrInvalidCredentials covers both unknown username and wrong password.
// The two cases must stay indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("Invalid credentials")

// ErrAccountNotVerified means the password checked out but the email was
// never confirmed.
var ErrAccountNotVerified = errors.New("Please verify your email before logging in")
