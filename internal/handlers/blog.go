package handlers

import (
	"io"
	"log"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/middleware"
	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/services"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// BlogHandler handles blog CRUD and public reads
type BlogHandler struct {
	store storage.Store
	blob  services.BlobStore
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(store storage.Store, blob services.BlobStore) *BlogHandler {
	return &BlogHandler{store: store, blob: blob}
}

// BlogRequest is the create body, accepted as JSON or multipart form
type BlogRequest struct {
	Title           string   `json:"title" form:"title"`
	Description     string   `json:"description" form:"description"`
	CoverImage      string   `json:"coverImage" form:"coverImage"`
	Excerpt         string   `json:"excerpt" form:"excerpt"`
	Tags            []string `json:"tags" form:"tags"`
	IsVideo         bool     `json:"isVideo" form:"isVideo"`
	VideoType       string   `json:"videoType" form:"videoType"`
	VideoURL        string   `json:"videoUrl" form:"videoUrl"`
	Status          string   `json:"status" form:"status"`
	Position        int      `json:"position" form:"position"`
	MetaTitle       string   `json:"metaTitle" form:"metaTitle"`
	MetaDescription string   `json:"metaDescription" form:"metaDescription"`
	MetaKeywords    string   `json:"metaKeywords" form:"metaKeywords"`
	CategoryID      uint     `json:"categoryId" form:"categoryId"`
}

// List returns published blogs for the public site, with filtering and paging
func (h *BlogHandler) List(c *fiber.Ctx) error {
	filter := &models.BlogFilter{
		Status:       models.BlogPublished,
		CategorySlug: c.Query("category"),
		Tag:          c.Query("tag"),
		Search:       c.Query("search"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 10),
		Sort:         c.Query("sort"),
	}

	blogs, total, err := h.store.ListBlogs(filter)
	if err != nil {
		return storeError(c, err, "Blogs not found", "")
	}

	return c.JSON(fiber.Map{
		"status":     true,
		"data":       blogs,
		"pagination": pagination(filter.Page, filter.Limit, total),
	})
}

// ListAdmin returns blogs of any status; authors see only their own
func (h *BlogHandler) ListAdmin(c *fiber.Ctx) error {
	filter := &models.BlogFilter{
		Status:       c.Query("status", "all"),
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 10),
		Sort:         c.Query("sort"),
	}
	if middleware.CallerRole(c) != models.RoleAdmin {
		filter.AuthorID = middleware.CallerID(c)
	}

	blogs, total, err := h.store.ListBlogs(filter)
	if err != nil {
		return storeError(c, err, "Blogs not found", "")
	}

	return c.JSON(fiber.Map{
		"status":     true,
		"data":       blogs,
		"pagination": pagination(filter.Page, filter.Limit, total),
	})
}

// GetBySlug returns one published blog with its approved comments and
// related posts, bumping the view counter.
func (h *BlogHandler) GetBySlug(c *fiber.Ctx) error {
	blog, err := h.store.GetBlogBySlug(c.Params("slug"))
	if err != nil || blog.Status != models.BlogPublished {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": false,
			"error":  "Blog not found",
		})
	}

	if err := h.store.IncrementBlogViews(blog.ID); err != nil {
		log.Printf("⚠️ Failed to bump view count for blog %d: %v", blog.ID, err)
	} else {
		blog.ViewCount++
	}

	comments, err := h.store.ListCommentsByBlog(blog.ID, models.CommentApproved)
	if err != nil {
		comments = nil
	}
	related, err := h.store.GetRelatedBlogs(blog, 3)
	if err != nil {
		related = nil
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data": fiber.Map{
			"blog":     blog,
			"comments": comments,
			"related":  related,
		},
	})
}

// GetByID returns one blog regardless of status (admin/author view)
func (h *BlogHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid blog ID",
		})
	}

	blog, err := h.store.GetBlogByID(id)
	if err != nil {
		return storeError(c, err, "Blog not found", "")
	}
	if !h.canManage(c, blog) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": false,
			"error":  "You can only access your own blogs",
		})
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   blog,
	})
}

// Related returns published posts sharing a category or tag
func (h *BlogHandler) Related(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid blog ID",
		})
	}

	blog, err := h.store.GetBlogByID(id)
	if err != nil {
		return storeError(c, err, "Blog not found", "")
	}

	related, err := h.store.GetRelatedBlogs(blog, queryInt(c, "limit", 3))
	if err != nil {
		return storeError(c, err, "Blog not found", "")
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   related,
	})
}

// Create creates a blog. Accepts JSON, or multipart with a "cover" file that
// is pushed to blob storage first.
func (h *BlogHandler) Create(c *fiber.Ctx) error {
	var req BlogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}

	if req.Title == "" || req.Description == "" || req.CategoryID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Title, description and categoryId are required",
		})
	}

	if _, err := h.store.GetCategoryByID(req.CategoryID); err != nil {
		return storeError(c, err, "Category not found", "")
	}

	if cover, err := c.FormFile("cover"); err == nil {
		req.CoverImage = h.uploadCover(cover)
	}

	status := req.Status
	if status == "" {
		status = models.BlogDraft
	}

	blog := &models.Blog{
		Title:           req.Title,
		Description:     req.Description,
		CoverImage:      req.CoverImage,
		Excerpt:         req.Excerpt,
		Tags:            req.Tags,
		IsVideo:         req.IsVideo,
		VideoType:       req.VideoType,
		VideoURL:        req.VideoURL,
		Status:          status,
		Position:        req.Position,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		CategoryID:      req.CategoryID,
		AuthorID:        middleware.CallerID(c),
	}

	if err := h.store.CreateBlog(blog); err != nil {
		return storeError(c, err, "Blog not found", "A blog with this title already exists")
	}

	if blog.Status == models.BlogPublished {
		if err := h.store.AdjustPostCount(blog.CategoryID, 1); err != nil {
			log.Printf("⚠️ Failed to bump post count for category %d: %v", blog.CategoryID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  true,
		"message": "Blog created successfully",
		"data":    blog,
	})
}

// Update edits a blog and keeps the category post counters consistent
func (h *BlogHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid blog ID",
		})
	}

	blog, err := h.store.GetBlogByID(id)
	if err != nil {
		return storeError(c, err, "Blog not found", "")
	}
	if !h.canManage(c, blog) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": false,
			"error":  "You can only edit your own blogs",
		})
	}

	var req struct {
		Title           *string   `json:"title"`
		Description     *string   `json:"description"`
		CoverImage      *string   `json:"coverImage"`
		Excerpt         *string   `json:"excerpt"`
		Tags            *[]string `json:"tags"`
		IsVideo         *bool     `json:"isVideo"`
		VideoType       *string   `json:"videoType"`
		VideoURL        *string   `json:"videoUrl"`
		Status          *string   `json:"status"`
		Position        *int      `json:"position"`
		MetaTitle       *string   `json:"metaTitle"`
		MetaDescription *string   `json:"metaDescription"`
		MetaKeywords    *string   `json:"metaKeywords"`
		CategoryID      *uint     `json:"categoryId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid request body",
		})
	}

	wasPublished := blog.Status == models.BlogPublished
	oldCategoryID := blog.CategoryID

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Description != nil {
		blog.Description = *req.Description
	}
	if req.CoverImage != nil {
		blog.CoverImage = *req.CoverImage
	}
	if req.Excerpt != nil {
		blog.Excerpt = *req.Excerpt
	}
	if req.Tags != nil {
		blog.Tags = *req.Tags
	}
	if req.IsVideo != nil {
		blog.IsVideo = *req.IsVideo
	}
	if req.VideoType != nil {
		blog.VideoType = *req.VideoType
	}
	if req.VideoURL != nil {
		blog.VideoURL = *req.VideoURL
	}
	if req.Status != nil {
		blog.Status = *req.Status
	}
	if req.Position != nil {
		blog.Position = *req.Position
	}
	if req.MetaTitle != nil {
		blog.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		blog.MetaDescription = *req.MetaDescription
	}
	if req.MetaKeywords != nil {
		blog.MetaKeywords = *req.MetaKeywords
	}
	if req.CategoryID != nil && *req.CategoryID != oldCategoryID {
		if _, err := h.store.GetCategoryByID(*req.CategoryID); err != nil {
			return storeError(c, err, "Category not found", "")
		}
		blog.CategoryID = *req.CategoryID
	}

	if cover, err := c.FormFile("cover"); err == nil {
		blog.CoverImage = h.uploadCover(cover)
	}

	if err := h.store.UpdateBlog(blog); err != nil {
		return storeError(c, err, "Blog not found", "A blog with this title already exists")
	}

	h.reconcilePostCount(wasPublished, blog.Status == models.BlogPublished, oldCategoryID, blog.CategoryID)

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Blog updated successfully",
		"data":    blog,
	})
}

// Delete removes a blog and releases its category counter
func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"error":  "Invalid blog ID",
		})
	}

	blog, err := h.store.GetBlogByID(id)
	if err != nil {
		return storeError(c, err, "Blog not found", "")
	}
	if !h.canManage(c, blog) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": false,
			"error":  "You can only delete your own blogs",
		})
	}

	if err := h.store.DeleteBlog(id); err != nil {
		return storeError(c, err, "Blog not found", "")
	}

	if blog.Status == models.BlogPublished {
		if err := h.store.AdjustPostCount(blog.CategoryID, -1); err != nil {
			log.Printf("⚠️ Failed to drop post count for category %d: %v", blog.CategoryID, err)
		}
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"message": "Blog deleted successfully",
	})
}

// canManage allows admins everywhere and authors on their own posts
func (h *BlogHandler) canManage(c *fiber.Ctx, blog *models.Blog) bool {
	if middleware.CallerRole(c) == models.RoleAdmin {
		return true
	}
	return blog.AuthorID == middleware.CallerID(c)
}

// reconcilePostCount applies the published-state transition to the
// denormalized category counters.
func (h *BlogHandler) reconcilePostCount(wasPublished, isPublished bool, oldCategory, newCategory uint) {
	switch {
	case !wasPublished && isPublished:
		h.adjust(newCategory, 1)
	case wasPublished && !isPublished:
		h.adjust(oldCategory, -1)
	case wasPublished && isPublished && oldCategory != newCategory:
		h.adjust(oldCategory, -1)
		h.adjust(newCategory, 1)
	}
}

func (h *BlogHandler) adjust(categoryID uint, delta int) {
	if err := h.store.AdjustPostCount(categoryID, delta); err != nil {
		log.Printf("⚠️ Failed to adjust post count for category %d by %d: %v", categoryID, delta, err)
	}
}

// uploadCover pushes a multipart cover image to blob storage, falling back
// to the placeholder when the store is unavailable.
func (h *BlogHandler) uploadCover(cover *multipart.FileHeader) string {
	file, err := cover.Open()
	if err != nil {
		return models.DefaultCoverImage
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.DefaultCoverImage
	}

	object, err := h.blob.Upload(
		services.UniquePathname("blog-covers", cover.Filename),
		cover.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		log.Printf("⚠️ Cover upload failed, using placeholder: %v", err)
		return models.DefaultCoverImage
	}
	return object.URL
}
