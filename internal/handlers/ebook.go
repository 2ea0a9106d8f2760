package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/services"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// EbookHandler handles the public ebook catalog and the download flow
type EbookHandler struct {
	store storage.Store
	email *services.EmailService
}

// NewEbookHandler creates a new ebook handler
func NewEbookHandler(store storage.Store, email *services.EmailService) *EbookHandler {
	return &EbookHandler{store: store, email: email}
}

// List returns active ebooks with filters and paging
func (h *EbookHandler) List(c *fiber.Ctx) error {
	filter := &models.EbookFilter{
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		Featured:   c.Query("featured") == "true",
		ActiveOnly: true,
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 12),
	}

	ebooks, total, err := h.store.ListEbooks(filter)
	if err != nil {
		return storeError(c, err, "Ebooks not found", "")
	}

	return c.JSON(fiber.Map{
		"status":     true,
		"data":       ebooks,
		"pagination": pagination(filter.Page, filter.Limit, total),
	})
}

// Popular returns the most downloaded active ebooks
func (h *EbookHandler) Popular(c *fiber.Ctx) error {
	ebooks, err := h.store.PopularEbooks(queryInt(c, "limit", 5))
	if err != nil {
		return storeError(c, err, "Ebooks not found", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   ebooks,
	})
}

// Get returns one active ebook by numeric id or slug, bumping views
func (h *EbookHandler) Get(c *fiber.Ctx) error {
	key := c.Params("id")

	var ebook *models.Ebook
	var err error
	if id, perr := parseUintParam(c, "id"); perr == nil {
		ebook, err = h.store.GetEbookByID(id)
	} else {
		ebook, err = h.store.GetEbookBySlug(key)
	}
	if err != nil || ebook.Status != models.EbookActive {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": false,
			"error":  "Ebook not found",
		})
	}

	if err := h.store.IncrementEbookViews(ebook.ID); err != nil {
		log.Printf("⚠️ Failed to bump view count for ebook %d: %v", ebook.ID, err)
	} else {
		ebook.ViewCount++
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   ebook,
	})
}

// DownloadRequest is the lead-capture form posted before a direct download
type DownloadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	CountryCode string `json:"countryCode"`
	HearAbout   string `json:"hearAbout"`
	EbookID     uint   `json:"ebookId"`
}

// Download records the lead, bumps the counter and emails the link. The link
// is always returned even when the email bounces, so the visitor is never
// blocked by SMTP trouble.
func (h *EbookHandler) Download(c *fiber.Ctx) error {
	var req DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Name == "" || req.Email == "" || req.EbookID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Name, email and ebookId are required",
		})
	}
	if !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "A valid email address is required",
		})
	}

	ebook, err := h.store.GetEbookByID(req.EbookID)
	if err != nil || ebook.Status != models.EbookActive {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": false,
			"error":  "Ebook not found",
		})
	}

	record := &models.EbookDownload{
		Name:            req.Name,
		Email:           req.Email,
		Mobile:          req.Mobile,
		CountryCode:     req.CountryCode,
		EbookName:       ebook.Name,
		EbookID:         ebook.ID,
		HearAbout:       req.HearAbout,
		IPAddress:       c.IP(),
		UserAgent:       c.Get("User-Agent"),
		Type:            models.DownloadByUser,
		TypeDescription: models.TypeUserDirectDownload,
		SentBy:          "user",
	}

	if err := h.email.SendDownloadEmail(req.Email, req.Name, ebook.Name, ebook.Brochure); err != nil {
		log.Printf("⚠️ Download email to %s not delivered: %v", req.Email, err)
	} else {
		record.EmailSent = true
	}

	if err := h.store.CreateDownload(record); err != nil {
		return storeError(c, err, "Ebook not found", "")
	}
	if err := h.store.AddEbookDownloads(ebook.ID, 1); err != nil {
		log.Printf("⚠️ Failed to bump download count for ebook %d: %v", ebook.ID, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Download link sent to your email",
		"data": fiber.Map{
			"downloadUrl": ebook.Brochure,
			"emailSent":   record.EmailSent,
		},
	})
}
