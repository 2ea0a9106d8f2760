package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/services"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// CommentHandler handles OTP-gated comment submission and moderation
type CommentHandler struct {
	store        storage.Store
	verification *services.VerificationService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(store storage.Store, verification *services.VerificationService) *CommentHandler {
	return &CommentHandler{store: store, verification: verification}
}

// CommentRequest is the payload for both submit and verify. The client keeps
// it and resubmits the whole thing with the code, so no server-side pending
// state is needed.
type CommentRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	CountryCode string `json:"countryCode"`
	Comment     string `json:"comment"`
	HearAbout   string `json:"hearAbout"`
	BlogID      uint   `json:"blogId"`
	OTP         string `json:"otp"`
}

func (r *CommentRequest) validate() string {
	if r.Name == "" || r.Email == "" || r.Comment == "" || r.BlogID == 0 {
		return "Name, email, comment and blogId are required"
	}
	if !strings.Contains(r.Email, "@") {
		return "A valid email address is required"
	}
	if n := len(strings.TrimSpace(r.Comment)); n < 10 || n > 1000 {
		return "Comment must be between 10 and 1000 characters"
	}
	return ""
}

// Submit validates the comment and emails a verification code
func (h *CommentHandler) Submit(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  msg,
		})
	}

	if _, err := h.store.GetBlogByID(req.BlogID); err != nil {
		return storeError(c, err, "Blog not found", "")
	}

	if _, err := h.verification.IssueCode(req.Email, models.PurposeComment); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  "Failed to send verification code",
		})
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Verification code sent to your email",
	})
}

// Verify redeems the code and creates the comment in pending state
func (h *CommentHandler) Verify(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  msg,
		})
	}
	if req.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Verification code is required",
		})
	}

	if err := h.verification.RedeemCode(req.Email, models.PurposeComment, req.OTP); err != nil {
		return verificationError(c, err)
	}

	comment := &models.BlogComment{
		Name:        req.Name,
		Email:       req.Email,
		Mobile:      req.Mobile,
		CountryCode: req.CountryCode,
		Comment:     req.Comment,
		HearAbout:   req.HearAbout,
		BlogID:      req.BlogID,
		IPAddress:   c.IP(),
		UserAgent:   c.Get("User-Agent"),
	}
	if err := h.store.CreateComment(comment); err != nil {
		return storeError(c, err, "Blog not found", "")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  true,
		"message": "Comment submitted for moderation",
		"data":    comment,
	})
}

// ListByBlog returns a blog's comments, approved only for the public
func (h *CommentHandler) ListByBlog(c *fiber.Ctx) error {
	blogID, err := parseUintParam(c, "blogId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid blog ID",
		})
	}

	comments, err := h.store.ListCommentsByBlog(blogID, c.Query("status", models.CommentApproved))
	if err != nil {
		return storeError(c, err, "Blog not found", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   comments,
	})
}

// Moderate approves or rejects a pending comment (admin only)
func (h *CommentHandler) Moderate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid comment ID",
		})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Status != models.CommentApproved && req.Status != models.CommentRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Status must be 'approved' or 'rejected'",
		})
	}

	comment, err := h.store.GetCommentByID(id)
	if err != nil {
		return storeError(c, err, "Comment not found", "")
	}

	comment.Status = req.Status
	if err := h.store.UpdateComment(comment); err != nil {
		return storeError(c, err, "Comment not found", "")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Comment " + req.Status,
		"data":    comment,
	})
}

// Delete removes a comment (admin only)
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid comment ID",
		})
	}

	if err := h.store.DeleteComment(id); err != nil {
		return storeError(c, err, "Comment not found", "")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Comment deleted successfully",
	})
}

// verificationError translates verification failures into responses
func verificationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAttemptsExhausted):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"status": false,
			"error":  "Too many failed attempts, please request a new code",
		})
	case errors.Is(err, services.ErrInvalidOrExpiredCode):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid or expired verification code",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  err.Error(),
		})
	}
}
