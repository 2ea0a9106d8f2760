package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/services"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// NewsletterHandler handles OTP-gated newsletter subscription
type NewsletterHandler struct {
	store        storage.Store
	verification *services.VerificationService
	email        *services.EmailService
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(store storage.Store, verification *services.VerificationService, email *services.EmailService) *NewsletterHandler {
	return &NewsletterHandler{store: store, verification: verification, email: email}
}

// NewsletterRequest is the payload for subscribe and verify
type NewsletterRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	OTP   string `json:"otp"`
}

// Subscribe starts a subscription. An active subscriber gets a 400, a lapsed
// one is reactivated immediately, and a new address gets a verification code.
func (h *NewsletterHandler) Subscribe(c *fiber.Ctx) error {
	var req NewsletterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "A valid email address is required",
		})
	}

	existing, err := h.store.GetSubscriberByEmail(req.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storeError(c, err, "", "")
	}

	if existing != nil {
		if existing.IsActive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": false,
				"error":  "Email is already subscribed",
			})
		}

		// Lapsed subscriber proved ownership once already, reactivate in place
		existing.IsActive = true
		existing.UnsubscribedAt = nil
		existing.SubscribedAt = time.Now()
		if req.Name != "" {
			existing.Name = req.Name
		}
		if err := h.store.UpdateSubscriber(existing); err != nil {
			return storeError(c, err, "Subscriber not found", "")
		}
		return c.JSON(fiber.Map{
			"status":  true,
			"message": "Subscription reactivated successfully",
			"data":    existing,
		})
	}

	if _, err := h.verification.IssueCode(req.Email, models.PurposeNewsletter); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  "Failed to send verification code",
		})
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Verification code sent to your email",
		"data": fiber.Map{
			"email":       req.Email,
			"requiresOTP": true,
		},
	})
}

// Verify redeems the code and activates the subscription
func (h *NewsletterHandler) Verify(c *fiber.Ctx) error {
	var req NewsletterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Email == "" || req.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Email and verification code are required",
		})
	}

	if err := h.verification.RedeemCode(req.Email, models.PurposeNewsletter, req.OTP); err != nil {
		return verificationError(c, err)
	}

	sub := &models.Newsletter{
		Email:    req.Email,
		Name:     req.Name,
		IsActive: true,
	}
	if err := h.store.CreateSubscriber(sub); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Subscribed concurrently between issue and redeem
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": false,
				"error":  "Email is already subscribed",
			})
		}
		return storeError(c, err, "", "")
	}

	if err := h.email.SendNewsletterWelcomeEmail(sub.Email); err != nil {
		log.Printf("⚠️ Welcome email to %s not delivered: %v", sub.Email, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  true,
		"message": "Subscribed successfully",
		"data":    sub,
	})
}

// Unsubscribe deactivates a subscription but keeps the row
func (h *NewsletterHandler) Unsubscribe(c *fiber.Ctx) error {
	var req NewsletterRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Email is required",
		})
	}

	sub, err := h.store.GetSubscriberByEmail(req.Email)
	if err != nil {
		return storeError(c, err, "Email is not subscribed", "")
	}
	if !sub.IsActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Email is already unsubscribed",
		})
	}

	now := time.Now()
	sub.IsActive = false
	sub.UnsubscribedAt = &now
	if err := h.store.UpdateSubscriber(sub); err != nil {
		return storeError(c, err, "Email is not subscribed", "")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Unsubscribed successfully",
	})
}

// List returns subscribers for the admin panel
func (h *NewsletterHandler) List(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	subs, err := h.store.ListSubscribers(activeOnly)
	if err != nil {
		return storeError(c, err, "", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   subs,
		"total":  len(subs),
	})
}
