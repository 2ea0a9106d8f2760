package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/services"
)

// Upload size limits
const (
	MaxImageSize  = 5 * 1024 * 1024
	MaxVideoSize  = 50 * 1024 * 1024
	MaxDirectSize = 10 * 1024 * 1024
	MaxBatchFiles = 10
)

var (
	imageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
	videoTypes = map[string]bool{
		"video/mp4":  true,
		"video/webm": true,
		"video/ogg":  true,
	}
	directTypes = map[string]bool{
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
		"image/webp":      true,
		"image/gif":       true,
		"application/pdf": true,
	}
)

// UploadHandler pushes validated files to blob storage
type UploadHandler struct {
	blob services.BlobStore
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(blob services.BlobStore) *UploadHandler {
	return &UploadHandler{blob: blob}
}

// Image uploads a single image (5MB cap)
func (h *UploadHandler) Image(c *fiber.Ctx) error {
	return h.single(c, "image", "images", imageTypes, MaxImageSize)
}

// Video uploads a single video (50MB cap)
func (h *UploadHandler) Video(c *fiber.Ctx) error {
	return h.single(c, "video", "videos", videoTypes, MaxVideoSize)
}

// Direct uploads one file of any allowed asset type (10MB cap)
func (h *UploadHandler) Direct(c *fiber.Ctx) error {
	return h.single(c, "file", "files", directTypes, MaxDirectSize)
}

// single validates and uploads one multipart file. Validation runs strictly
// before any blob-store call so a bad file never costs a network round trip.
func (h *UploadHandler) single(c *fiber.Ctx, field, folder string, allowed map[string]bool, maxSize int64) error {
	file, err := c.FormFile(field)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  fmt.Sprintf("File field '%s' is required", field),
		})
	}

	if msg := validateFile(file, allowed, maxSize); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  msg,
		})
	}

	object, err := h.push(file, folder)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"error":  "Upload failed: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "File uploaded successfully",
		"data":    object,
	})
}

// Images uploads up to MaxBatchFiles images in one request. All files are
// validated up front; one bad file rejects the whole batch before any upload.
func (h *UploadHandler) Images(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Multipart form required",
		})
	}

	files := form.File["images"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "At least one image is required",
		})
	}
	if len(files) > MaxBatchFiles {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  fmt.Sprintf("At most %d images per request", MaxBatchFiles),
		})
	}

	for _, file := range files {
		if msg := validateFile(file, imageTypes, MaxImageSize); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": false,
				"error":  file.Filename + ": " + msg,
			})
		}
	}

	uploaded := make([]*services.BlobObject, 0, len(files))
	for _, file := range files {
		object, err := h.push(file, "images")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": false,
				"error":  "Upload failed at " + file.Filename + ": " + err.Error(),
				"data":   uploaded,
			})
		}
		uploaded = append(uploaded, object)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": fmt.Sprintf("%d files uploaded successfully", len(uploaded)),
		"data":    uploaded,
	})
}

func (h *UploadHandler) push(file *multipart.FileHeader, folder string) (*services.BlobObject, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return h.blob.Upload(
		services.UniquePathname(folder, file.Filename),
		file.Header.Get("Content-Type"),
		data,
	)
}

// validateFile returns an error message, or "" when the file is acceptable
func validateFile(file *multipart.FileHeader, allowed map[string]bool, maxSize int64) string {
	contentType := file.Header.Get("Content-Type")
	if !allowed[contentType] {
		return fmt.Sprintf("File type %s is not allowed", contentType)
	}
	if file.Size > maxSize {
		return fmt.Sprintf("File exceeds the %dMB limit", maxSize/(1024*1024))
	}
	return ""
}
