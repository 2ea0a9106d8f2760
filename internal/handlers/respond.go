package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/storage"
)

// pagination builds the envelope's pagination block
func pagination(page, limit int, total int64) fiber.Map {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return fiber.Map{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}

// parseUintParam reads a numeric route parameter
func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// queryInt reads an integer query parameter with a default
func queryInt(c *fiber.Ctx, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// storeError maps storage sentinels onto the response envelope
func storeError(c *fiber.Ctx, err error, notFoundMsg, duplicateMsg string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": false,
			"error":  notFoundMsg,
		})
	case errors.Is(err, storage.ErrDuplicate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  duplicateMsg,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  err.Error(),
		})
	}
}
