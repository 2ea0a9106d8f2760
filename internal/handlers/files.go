package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/services"
)

// FileHandler is the admin file manager over blob storage
type FileHandler struct {
	blob services.BlobStore
}

// NewFileHandler creates a new file manager handler
func NewFileHandler(blob services.BlobStore) *FileHandler {
	return &FileHandler{blob: blob}
}

// List pages through stored files, optionally under a folder prefix
func (h *FileHandler) List(c *fiber.Ctx) error {
	result, err := h.blob.List(c.Query("prefix"), c.Query("cursor"), queryInt(c, "limit", 50))
	if err != nil {
		return blobError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   result,
	})
}

// Delete removes one stored file by URL
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "File URL is required",
		})
	}

	if err := h.blob.Delete([]string{req.URL}); err != nil {
		return blobError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "File deleted successfully",
	})
}

// BulkDelete removes many stored files in one call
func (h *FileHandler) BulkDelete(c *fiber.Ctx) error {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.URLs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "File URLs are required",
		})
	}

	if err := h.blob.Delete(req.URLs); err != nil {
		return blobError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Files deleted successfully",
	})
}

func blobError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrBlobNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": false,
			"error":  "File storage is not configured",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status": false,
		"error":  err.Error(),
	})
}
