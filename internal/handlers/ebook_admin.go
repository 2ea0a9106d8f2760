package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/middleware"
	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/services"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// EbookAdminHandler handles catalog management and download analytics
type EbookAdminHandler struct {
	store storage.Store
	email *services.EmailService
}

// NewEbookAdminHandler creates a new admin ebook handler
func NewEbookAdminHandler(store storage.Store, email *services.EmailService) *EbookAdminHandler {
	return &EbookAdminHandler{store: store, email: email}
}

// EbookRequest is the JSON body for create/update
type EbookRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	Brochure     string   `json:"brochure"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	FileSize     int      `json:"fileSize"`
	PageCount    int      `json:"pageCount"`
	Author       string   `json:"author"`
	PublishYear  int      `json:"publishYear"`
	BookLanguage string   `json:"bookLanguage"`
	Status       *int     `json:"status"`
	Position     int      `json:"position"`
	Featured     bool     `json:"featured"`
}

// List returns the catalog including inactive ebooks
func (h *EbookAdminHandler) List(c *fiber.Ctx) error {
	filter := &models.EbookFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 12),
	}
	if raw := c.Query("status"); raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			filter.Status = &status
		}
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

// Get returns one ebook regardless of status
func (h *EbookAdminHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid ebook ID",
		})
	}

	ebook, err := h.store.GetEbookByID(id)
	if err != nil {
		return storeError(c, err, "Ebook not found", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   ebook,
	})
}

// Create adds an ebook to the catalog
func (h *EbookAdminHandler) Create(c *fiber.Ctx) error {
	var req EbookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Name == "" || req.Image == "" || req.Brochure == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Name, image and brochure are required",
		})
	}

	status := models.EbookActive
	if req.Status != nil {
		status = *req.Status
	}

	ebook := &models.Ebook{
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.Image,
		Brochure:     req.Brochure,
		Category:     req.Category,
		Tags:         req.Tags,
		FileSize:     req.FileSize,
		PageCount:    req.PageCount,
		Author:       req.Author,
		PublishYear:  req.PublishYear,
		BookLanguage: req.BookLanguage,
		Status:       status,
		Position:     req.Position,
		Featured:     req.Featured,
	}
	if err := h.store.CreateEbook(ebook); err != nil {
		return storeError(c, err, "Ebook not found", "An ebook with this name already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  true,
		"message": "Ebook created successfully",
		"data":    ebook,
	})
}

// Update edits an ebook
func (h *EbookAdminHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid ebook ID",
		})
	}

	ebook, err := h.store.GetEbookByID(id)
	if err != nil {
		return storeError(c, err, "Ebook not found", "")
	}

	var req struct {
		Name         *string   `json:"name"`
		Description  *string   `json:"description"`
		Image        *string   `json:"image"`
		Brochure     *string   `json:"brochure"`
		Category     *string   `json:"category"`
		Tags         *[]string `json:"tags"`
		FileSize     *int      `json:"fileSize"`
		PageCount    *int      `json:"pageCount"`
		Author       *string   `json:"author"`
		PublishYear  *int      `json:"publishYear"`
		BookLanguage *string   `json:"bookLanguage"`
		Status       *int      `json:"status"`
		Position     *int      `json:"position"`
		Featured     *bool     `json:"featured"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}

	if req.Name != nil && *req.Name != ebook.Name {
		ebook.Name = *req.Name
		ebook.Slug = models.Slugify(*req.Name)
	}
	if req.Description != nil {
		ebook.Description = *req.Description
	}
	if req.Image != nil {
		ebook.Image = *req.Image
	}
	if req.Brochure != nil {
		ebook.Brochure = *req.Brochure
	}
	if req.Category != nil {
		ebook.Category = *req.Category
	}
	if req.Tags != nil {
		ebook.Tags = *req.Tags
	}
	if req.FileSize != nil {
		ebook.FileSize = *req.FileSize
	}
	if req.PageCount != nil {
		ebook.PageCount = *req.PageCount
	}
	if req.Author != nil {
		ebook.Author = *req.Author
	}
	if req.PublishYear != nil {
		ebook.PublishYear = *req.PublishYear
	}
	if req.BookLanguage != nil {
		ebook.BookLanguage = *req.BookLanguage
	}
	if req.Status != nil {
		ebook.Status = *req.Status
	}
	if req.Position != nil {
		ebook.Position = *req.Position
	}
	if req.Featured != nil {
		ebook.Featured = *req.Featured
	}

	if err := h.store.UpdateEbook(ebook); err != nil {
		return storeError(c, err, "Ebook not found", "An ebook with this name already exists")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Ebook updated successfully",
		"data":    ebook,
	})
}

// Delete removes an ebook from the catalog
func (h *EbookAdminHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid ebook ID",
		})
	}

	if err := h.store.DeleteEbook(id); err != nil {
		return storeError(c, err, "Ebook not found", "")
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Ebook deleted successfully",
	})
}

// Dashboard aggregates download analytics for the admin panel
func (h *EbookAdminHandler) Dashboard(c *fiber.Ctx) error {
	total, user, admin, err := h.store.CountDownloadsByType()
	if err != nil {
		return storeError(c, err, "", "")
	}
	uniqueEmails, err := h.store.CountDistinctDownloadEmails(0)
	if err != nil {
		return storeError(c, err, "", "")
	}
	topEbooks, err := h.store.TopDownloadedEbooks(queryInt(c, "top", 5))
	if err != nil {
		return storeError(c, err, "", "")
	}
	daily, err := h.store.DownloadsByDay(time.Now().AddDate(0, 0, -30))
	if err != nil {
		return storeError(c, err, "", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data": fiber.Map{
			"totalDownloads": total,
			"userDownloads":  user,
			"adminSends":     admin,
			"uniqueEmails":   uniqueEmails,
			"topEbooks":      topEbooks,
			"daily":          daily,
		},
	})
}

// EbookStats returns per-ebook download counts
func (h *EbookAdminHandler) EbookStats(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid ebook ID",
		})
	}

	ebook, err := h.store.GetEbookByID(id)
	if err != nil {
		return storeError(c, err, "Ebook not found", "")
	}

	total, user, admin, err := h.store.CountDownloadsForEbook(id)
	if err != nil {
		return storeError(c, err, "", "")
	}
	uniqueEmails, err := h.store.CountDistinctDownloadEmails(id)
	if err != nil {
		return storeError(c, err, "", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data": fiber.Map{
			"ebook":          ebook,
			"totalDownloads": total,
			"userDownloads":  user,
			"adminSends":     admin,
			"uniqueEmails":   uniqueEmails,
		},
	})
}

// ListDownloads returns download records with filters and paging
func (h *EbookAdminHandler) ListDownloads(c *fiber.Ctx) error {
	filter, err := downloadFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  err.Error(),
		})
	}
	filter.Page = queryInt(c, "page", 1)
	filter.Limit = queryInt(c, "limit", 20)

	downloads, total, err := h.store.ListDownloads(filter)
	if err != nil {
		return storeError(c, err, "", "")
	}

	return c.JSON(fiber.Map{
		"status":     true,
		"data":       downloads,
		"pagination": pagination(filter.Page, filter.Limit, total),
	})
}

// ExportDownloads streams the filtered download records as CSV
func (h *EbookAdminHandler) ExportDownloads(c *fiber.Ctx) error {
	filter, err := downloadFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  err.Error(),
		})
	}

	downloads, _, err := h.store.ListDownloads(filter)
	if err != nil {
		return storeError(c, err, "", "")
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ebook-downloads-%s.csv"`, time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(c.Response().BodyWriter())
	header := []string{"Name", "Email", "Mobile", "Ebook", "Type", "Sent By", "Email Sent", "Downloaded At"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, d := range downloads {
		row := []string{
			d.Name,
			d.Email,
			d.Mobile,
			d.EbookName,
			d.TypeDescription,
			d.SentBy,
			strconv.FormatBool(d.EmailSent),
			d.DownloadedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SendRequest is the payload for single and bulk admin sends
type SendRequest struct {
	EbookID uint     `json:"ebookId"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Emails  []string `json:"emails"`
}

// Send emails one ebook link to one recipient (admin push)
func (h *EbookAdminHandler) Send(c *fiber.Ctx) error {
	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if req.Email == "" || req.EbookID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Email and ebookId are required",
		})
	}

	ebook, err := h.store.GetEbookByID(req.EbookID)
	if err != nil {
		return storeError(c, err, "Ebook not found", "")
	}

	if err := h.email.SendDownloadEmail(req.Email, req.Name, ebook.Name, ebook.Brochure); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status": false,
			"error":  "Failed to send email: " + err.Error(),
		})
	}

	adminName, _ := c.Locals(middleware.ContextEmail).(string)
	record := &models.EbookDownload{
		Name:            req.Name,
		Email:           req.Email,
		EbookName:       ebook.Name,
		EbookID:         ebook.ID,
		EmailSent:       true,
		Type:            models.DownloadByAdmin,
		TypeDescription: models.TypeAdminSingleSend,
		SentBy:          adminName,
		SentByUserID:    middleware.CallerID(c),
	}
	if err := h.store.CreateDownload(record); err != nil {
		log.Printf("⚠️ Failed to record admin send: %v", err)
	}
	if err := h.store.AddEbookDownloads(ebook.ID, 1); err != nil {
		log.Printf("⚠️ Failed to bump download count for ebook %d: %v", ebook.ID, err)
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Ebook sent successfully",
	})
}

// BulkSend emails one ebook link to many recipients and reports per-address
// results. The download counter moves by the number of successful sends.
func (h *EbookAdminHandler) BulkSend(c *fiber.Ctx) error {
	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}
	if len(req.Emails) == 0 || req.EbookID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Emails and ebookId are required",
		})
	}

	ebook, err := h.store.GetEbookByID(req.EbookID)
	if err != nil {
		return storeError(c, err, "Ebook not found", "")
	}

	result := h.email.SendBulkDownloadEmails(req.Emails, ebook.Name, ebook.Brochure)

	adminName, _ := c.Locals(middleware.ContextEmail).(string)
	records := make([]*models.EbookDownload, 0, len(result.Sent))
	for _, email := range result.Sent {
		records = append(records, &models.EbookDownload{
			Name:            email,
			Email:           email,
			EbookName:       ebook.Name,
			EbookID:         ebook.ID,
			EmailSent:       true,
			Type:            models.DownloadByAdmin,
			TypeDescription: models.TypeAdminBulkSend,
			SentBy:          adminName,
			SentByUserID:    middleware.CallerID(c),
		})
	}
	if len(records) > 0 {
		if err := h.store.CreateDownloads(records); err != nil {
			log.Printf("⚠️ Failed to record bulk send: %v", err)
		}
		if err := h.store.AddEbookDownloads(ebook.ID, len(records)); err != nil {
			log.Printf("⚠️ Failed to bump download count for ebook %d: %v", ebook.ID, err)
		}
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": fmt.Sprintf("Sent to %d of %d recipients", len(result.Sent), len(req.Emails)),
		"data": fiber.Map{
			"sent":   result.Sent,
			"failed": result.Failed,
		},
	})
}

// downloadFilter parses the shared list/export query parameters
func downloadFilter(c *fiber.Ctx) (*models.DownloadFilter, error) {
	filter := &models.DownloadFilter{
		Search: c.Query("search"),
	}
	if raw := c.Query("ebookId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ebookId")
		}
		filter.EbookID = uint(id)
	}
	if raw := c.Query("type"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid type")
		}
		filter.Type = t
	}
	if raw := c.Query("startDate"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("startDate must be YYYY-MM-DD")
		}
		end := time.Now()
		if rawEnd := c.Query("endDate"); rawEnd != "" {
			end, err = time.Parse("2006-01-02", rawEnd)
			if err != nil {
				return nil, fmt.Errorf("endDate must be YYYY-MM-DD")
			}
			end = end.Add(24*time.Hour - time.Second)
		}
		filter.StartDate = &start
		filter.EndDate = &end
	}
	return filter, nil
}
