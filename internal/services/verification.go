package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
	"github.com/l2h-tech/blog-backend/internal/utils"
)

// Errors surfaced to handlers by RedeemCode
var (
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrAttemptsExhausted    = errors.New("too many failed attempts, request a new code")
)

// VerificationService issues and redeems one-time email verification codes
type VerificationService struct {
	store storage.Store
	email *EmailService
}

// NewVerificationService wires the service to its storage and mail backends
func NewVerificationService(store storage.Store, email *EmailService) *VerificationService {
	return &VerificationService{store: store, email: email}
}

// IssueCode creates a fresh code for the (email, purpose) pair and mails it.
// A mail delivery failure is logged but does not fail the issue, so the flow
// still works when SMTP is down or unconfigured.
func (v *VerificationService) IssueCode(email, purpose string) (*models.OTP, error) {
	code, err := utils.GenerateOTP(6)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	otp := &models.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: utils.OTPExpiryDate(),
	}
	if err := v.store.CreateOTP(otp); err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := v.email.SendOTPEmail(email, code, purpose); err != nil {
		log.Printf("⚠️ OTP email to %s not delivered: %v", email, err)
	}
	return otp, nil
}

// RedeemCode validates a submitted code and consumes it exactly once.
// A wrong guess counts against the outstanding code for the pair; after
// MaxOTPAttempts failures the code is dead even if the right value is
// submitted later.
func (v *VerificationService) RedeemCode(email, purpose, code string) error {
	otp, err := v.store.GetActiveOTP(email, code, purpose)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to look up verification code: %w", err)
		}
		// Wrong guess: charge it to the newest outstanding code so brute
		// forcing burns the code instead of the attacker's patience.
		if pending, perr := v.store.GetLatestPendingOTP(email, purpose); perr == nil {
			if ierr := v.store.IncrementOTPAttempts(pending.ID); ierr != nil {
				log.Printf("⚠️ Failed to record verification attempt: %v", ierr)
			}
		}
		return ErrInvalidOrExpiredCode
	}

	if otp.Attempts >= models.MaxOTPAttempts {
		return ErrAttemptsExhausted
	}

	consumed, err := v.store.ConsumeOTP(otp.ID)
	if err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	if !consumed {
		// Lost the race with a concurrent redeem of the same code
		return ErrInvalidOrExpiredCode
	}
	return nil
}
