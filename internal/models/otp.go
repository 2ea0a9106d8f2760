package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// OTP purposes
const (
	PurposeComment       = "comment"
	PurposeNewsletter    = "newsletter"
	PurposePasswordReset = "password-reset"
)

// MaxOTPAttempts caps failed verification attempts per code
const MaxOTPAttempts = 3

// OTP is a pending one-time verification code. Several unconsumed codes may
// coexist for the same (email, purpose) pair; verification matches the exact
// code value together with isUsed=false and an unexpired window.
type OTP struct {
	gorm.Model

	Email     string    `json:"email" gorm:"index;not null"`
	Code      string    `json:"-" gorm:"not null"`       // 6 decimal digits, never serialized
	Purpose   string    `json:"purpose" gorm:"not null"` // "comment", "newsletter", "password-reset"
	ExpiresAt time.Time `json:"expiresAt" gorm:"index;not null"`
	IsUsed    bool      `json:"isUsed" gorm:"default:false"`
	Attempts  int       `json:"attempts" gorm:"default:0"`
}

// BeforeCreate normalizes the email so verification lookups, which always
// query lowercase, can match the stored row
func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	return nil
}

// Expired reports whether the code's window has passed
func (o *OTP) Expired() bool {
	return time.Now().After(o.ExpiresAt)
}
