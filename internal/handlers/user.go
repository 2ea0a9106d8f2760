package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/middleware"
	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// UserHandler handles admin user management
type UserHandler struct {
	store storage.Store
}

// NewUserHandler creates a new user handler
func NewUserHandler(store storage.Store) *UserHandler {
	return &UserHandler{store: store}
}

// List returns users with search/role filters and paging
func (h *UserHandler) List(c *fiber.Ctx) error {
	filter := &models.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	users, total, err := h.store.ListUsers(filter)
	if err != nil {
		return storeError(c, err, "", "")
	}

	return c.JSON(fiber.Map{
		"status":     true,
		"data":       users,
		"pagination": pagination(filter.Page, filter.Limit, total),
	})
}

// Get returns one user
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid user ID",
		})
	}

	user, err := h.store.GetUserByID(id)
	if err != nil {
		return storeError(c, err, "User not found", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   user,
	})
}

// Create adds a user with an explicit role (admin only)
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Name, email and password are required",
		})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Password must be at least 8 characters",
		})
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  "Failed to hash password",
		})
	}

	if err := h.store.CreateUser(user); err != nil {
		return storeError(c, err, "User not found", "Email is already registered")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  true,
		"message": "User created successfully",
		"data":    user,
	})
}

// Update edits a user's fields including role and active flag
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid user ID",
		})
	}

	user, err := h.store.GetUserByID(id)
	if err != nil {
		return storeError(c, err, "User not found", "")
	}

	var req struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
		IsActive *bool   `json:"isActive"`
		Password *string `json:"password"`
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
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Image != nil {
		user.Image = *req.Image
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
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
		"message": "User updated successfully",
		"data":    user,
	})
}

// ToggleActive flips a user's active flag
func (h *UserHandler) ToggleActive(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid user ID",
		})
	}

	user, err := h.store.GetUserByID(id)
	if err != nil {
		return storeError(c, err, "User not found", "")
	}

	user.IsActive = !user.IsActive
	if err := h.store.UpdateUser(user); err != nil {
		return storeError(c, err, "User not found", "")
	}

	state := "deactivated"
	if user.IsActive {
		state = "activated"
	}
	return c.JSON(fiber.Map{
		"status":  true,
		"message": "User " + state + " successfully",
		"data":    user,
	})
}

// Delete removes a user unless they still have authored blogs
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid user ID",
		})
	}

	if id == middleware.CallerID(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "You cannot delete your own account",
		})
	}

	if _, err := h.store.GetUserByID(id); err != nil {
		return storeError(c, err, "User not found", "")
	}

	count, err := h.store.CountBlogsByAuthor(id)
	if err != nil {
		return storeError(c, err, "User not found", "")
	}
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  fmt.Sprintf("Cannot delete user with %d existing posts", count),
		})
	}

	if err := h.store.DeleteUser(id); err != nil {
		return storeError(c, err, "User not found", "")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "User deleted successfully",
	})
}

// Stats returns role and activity breakdowns for the admin dashboard
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	byRole, err := h.store.CountUsersByRole()
	if err != nil {
		return storeError(c, err, "", "")
	}
	active, inactive, err := h.store.CountUsersByStatus()
	if err != nil {
		return storeError(c, err, "", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data": fiber.Map{
			"byRole":   byRole,
			"active":   active,
			"inactive": inactive,
			"total":    active + inactive,
		},
	})
}
