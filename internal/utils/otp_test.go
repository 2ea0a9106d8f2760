package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9', "code %q contains non-digit %q", code, ch)
		}
	}
}

func TestGenerateOTPDefaultsLength(t *testing.T) {
	code, err := GenerateOTP(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestGenerateOTPNotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		seen[code] = true
	}
	// 50 identical 6-digit draws would mean the generator is broken
	assert.Greater(t, len(seen), 1)
}

func TestOTPExpiryWindow(t *testing.T) {
	t.Setenv("OTP_EXPIRY_MINUTES", "")
	assert.Equal(t, 10*time.Minute, OTPExpiryWindow())

	t.Setenv("OTP_EXPIRY_MINUTES", "5")
	assert.Equal(t, 5*time.Minute, OTPExpiryWindow())

	t.Setenv("OTP_EXPIRY_MINUTES", "nonsense")
	assert.Equal(t, 10*time.Minute, OTPExpiryWindow())
}

func TestOTPExpiryDate(t *testing.T) {
	t.Setenv("OTP_EXPIRY_MINUTES", "")
	expiry := OTPExpiryDate()
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiry, 2*time.Second)
}
