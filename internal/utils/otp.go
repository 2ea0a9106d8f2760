package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"
)

// DefaultOTPExpiryMinutes is used when OTP_EXPIRY_MINUTES is unset
const DefaultOTPExpiryMinutes = 10

var ten = big.NewInt(10)

// GenerateOTP generates a cryptographically secure numeric code of the given
// length. Each digit is drawn uniformly from 0-9, so math/rand is never
// acceptable here.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// OTPExpiryWindow returns the configured code lifetime
func OTPExpiryWindow() time.Duration {
	minutes := DefaultOTPExpiryMinutes
	if v := os.Getenv("OTP_EXPIRY_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			minutes = parsed
		}
	}
	return time.Duration(minutes) * time.Minute
}

// OTPExpiryDate computes the expiry timestamp for a code issued now
func OTPExpiryDate() time.Time {
	return time.Now().Add(OTPExpiryWindow())
}
