package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/middleware"
	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
	"github.com/l2h-tech/blog-backend/internal/utils"
)

// AuthHandler handles registration, login and profile requests
type AuthHandler struct {
	store storage.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store) *AuthHandler {
	return &AuthHandler{store: store}
}

// Register creates a new account and returns a token pair
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var reg models.UserRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}

	if reg.Email == "" || reg.Password == "" || reg.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Name, email and password are required",
		})
	}
	if len(reg.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Password must be at least 8 characters",
		})
	}

	// Only admins can hand out elevated roles; self-registration is "user"
	role := models.RoleUser
	if middleware.CallerRole(c) == models.RoleAdmin && reg.Role != "" {
		role = reg.Role
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(reg.Email)),
		Name:     reg.Name,
		Role:     role,
		IsActive: true,
	}
	if err := user.SetPassword(reg.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  "Failed to hash password",
		})
	}

	if err := h.store.CreateUser(user); err != nil {
		return storeError(c, err, "User not found", "Email is already registered")
	}

	return h.tokenResponse(c, fiber.StatusCreated, "Registered successfully", user)
}

// Login verifies credentials and returns a token pair
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid email or password",
		})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": false,
			"error":  "Account is deactivated",
		})
	}

	return h.tokenResponse(c, fiber.StatusOK, "Logged in successfully", user)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Refresh token is required",
		})
	}

	claims, err := utils.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid or expired refresh token",
		})
	}

	// Re-load the user so a deactivated account cannot keep refreshing
	user, err := h.store.GetUserByID(claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": false,
			"error":  "Account no longer exists",
		})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": false,
			"error":  "Account is deactivated",
		})
	}

	return h.tokenResponse(c, fiber.StatusOK, "Token refreshed", user)
}

// GetProfile returns the authenticated user's account
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.store.GetUserByID(middleware.CallerID(c))
	if err != nil {
		return storeError(c, err, "User not found", "")
	}
	return c.JSON(fiber.Map{
		"status": true,
		"data":   user,
	})
}

// UpdateProfile updates the authenticated user's own fields
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := h.store.GetUserByID(middleware.CallerID(c))
	if err != nil {
		return storeError(c, err, "User not found", "")
	}

	var req struct {
		Name      *string `json:"name"`
		Bio       *string `json:"bio"`
		Image     *string `json:"image"`
		Facebook  *string `json:"facebook"`
		Twitter   *string `json:"twitter"`
		LinkedIn  *string `json:"linkedin"`
		Instagram *string `json:"instagram"`
		YouTube   *string `json:"youtube"`
		Password  *string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Image != nil {
		user.Image = *req.Image
	}
	if req.Facebook != nil {
		user.Facebook = *req.Facebook
	}
	if req.Twitter != nil {
		user.Twitter = *req.Twitter
	}
	if req.LinkedIn != nil {
		user.LinkedIn = *req.LinkedIn
	}
	if req.Instagram != nil {
		user.Instagram = *req.Instagram
	}
	if req.YouTube != nil {
		user.YouTube = *req.YouTube
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": false,
				"error":  "Password must be at least 8 characters",
			})
		}
		if err := user.SetPassword(*req.Password); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": false,
				"error":  "Failed to hash password",
			})
		}
	}

	if err := h.store.UpdateUser(user); err != nil {
		return storeError(c, err, "User not found", "Email is already registered")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Profile updated successfully",
		"data":    user,
	})
}

func (h *AuthHandler) tokenResponse(c *fiber.Ctx, code int, message string, user *models.User) error {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  "Failed to generate token",
		})
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  "Failed to generate token",
		})
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  true,
		"message": message,
		"data": fiber.Map{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}
