package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// CategoryHandler handles blog category management
type CategoryHandler struct {
	store storage.Store
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(store storage.Store) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// CategoryRequest is the JSON body for create/update
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Position    int    `json:"position"`
}

// List returns categories, active only unless ?status= says otherwise
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	status := c.Query("status", models.CategoryActive)
	categories, err := h.store.ListCategories(status)
	if err != nil {
		return storeError(c, err, "Categories not found", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   categories,
	})
}

// GetBySlug returns one category
func (h *CategoryHandler) GetBySlug(c *fiber.Ctx) error {
	category, err := h.store.GetCategoryBySlug(c.Params("slug"))
	if err != nil {
		return storeError(c, err, "Category not found", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   category,
	})
}

// Create adds a category (admin only)
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Category name is required",
		})
	}

	category := &models.BlogCategory{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Position:    req.Position,
	}
	if err := h.store.CreateCategory(category); err != nil {
		return storeError(c, err, "Category not found", "Category already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  true,
		"message": "Category created successfully",
		"data":    category,
	})
}

// Update edits a category (admin only)
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid category ID",
		})
	}

	category, err := h.store.GetCategoryByID(id)
	if err != nil {
		return storeError(c, err, "Category not found", "")
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Position    *int    `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}

	if req.Name != nil && *req.Name != category.Name {
		category.Name = *req.Name
		category.Slug = models.Slugify(*req.Name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Status != nil {
		category.Status = *req.Status
	}
	if req.Position != nil {
		category.Position = *req.Position
	}

	if err := h.store.UpdateCategory(category); err != nil {
		return storeError(c, err, "Category not found", "Category already exists")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Category updated successfully",
		"data":    category,
	})
}

// Delete removes a category unless it still owns published blogs
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid category ID",
		})
	}

	count, err := h.store.CountPublishedBlogsInCategory(id)
	if err != nil {
		return storeError(c, err, "Category not found", "")
	}
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Cannot delete category with published blogs",
		})
	}

	if err := h.store.DeleteCategory(id); err != nil {
		return storeError(c, err, "Category not found", "")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Category deleted successfully",
	})
}
