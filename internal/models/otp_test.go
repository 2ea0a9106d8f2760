package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPBeforeCreateNormalizesEmail(t *testing.T) {
	otp := &OTP{Email: "  Reader@Example.COM ", Code: "123456", Purpose: PurposeComment}
	require.NoError(t, otp.BeforeCreate(nil))
	assert.Equal(t, "reader@example.com", otp.Email)
}

func TestOTPExpired(t *testing.T) {
	assert.False(t, (&OTP{ExpiresAt: time.Now().Add(time.Minute)}).Expired())
	assert.True(t, (&OTP{ExpiresAt: time.Now().Add(-time.Minute)}).Expired())
}
