package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/handlers"
	"github.com/l2h-tech/blog-backend/internal/middleware"
	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/services"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, email *services.EmailService, blob services.BlobStore) {
	verification := services.NewVerificationService(store, email)

	health := handlers.NewHealthHandler("1.0.0")
	auth := handlers.NewAuthHandler(store)
	blogs := handlers.NewBlogHandler(store, blob)
	categories := handlers.NewCategoryHandler(store)
	comments := handlers.NewCommentHandler(store, verification)
	newsletter := handlers.NewNewsletterHandler(store, verification, email)
	users := handlers.NewUserHandler(store)
	ebooks := handlers.NewEbookHandler(store, email)
	ebookAdmin := handlers.NewEbookAdminHandler(store, email)
	uploads := handlers.NewUploadHandler(blob)
	files := handlers.NewFileHandler(blob)

	authed := middleware.Authenticate()
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	writers := middleware.RequireRole(models.RoleAdmin, models.RoleAuthor)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to L2H Blog Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":     "/api/health",
				"blogs":      "/api/blogs",
				"categories": "/api/categories",
				"ebooks":     "/api/ebooks",
				"newsletter": "/api/newsletter",
			},
		})
	})

	api := app.Group("/api")
	api.Get("/health", health.Check)

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/register", auth.Register)
	authGroup.Post("/login", auth.Login)
	authGroup.Post("/refresh-token", auth.RefreshToken)
	authGroup.Get("/profile", authed, auth.GetProfile)
	authGroup.Put("/profile", authed, auth.UpdateProfile)

	// Blogs: public reads, author/admin writes
	blogGroup := api.Group("/blogs")
	blogGroup.Get("/", blogs.List)
	blogGroup.Get("/admin", authed, writers, blogs.ListAdmin)
	blogGroup.Get("/slug/:slug", blogs.GetBySlug)
	blogGroup.Get("/:id/related", blogs.Related)
	blogGroup.Get("/:id", authed, writers, blogs.GetByID)
	blogGroup.Post("/", authed, writers, blogs.Create)
	blogGroup.Put("/:id", authed, writers, blogs.Update)
	blogGroup.Delete("/:id", authed, writers, blogs.Delete)

	// Categories: public reads, admin writes
	categoryGroup := api.Group("/categories")
	categoryGroup.Get("/", categories.List)
	categoryGroup.Get("/:slug", categories.GetBySlug)
	categoryGroup.Post("/", authed, adminOnly, categories.Create)
	categoryGroup.Put("/:id", authed, adminOnly, categories.Update)
	categoryGroup.Delete("/:id", authed, adminOnly, categories.Delete)

	// Comments: OTP-gated submission, admin moderation
	commentGroup := api.Group("/comments")
	commentGroup.Post("/submit", comments.Submit)
	commentGroup.Post("/verify", comments.Verify)
	commentGroup.Get("/blog/:blogId", comments.ListByBlog)
	commentGroup.Put("/:id/moderate", authed, adminOnly, comments.Moderate)
	commentGroup.Delete("/:id", authed, adminOnly, comments.Delete)

	// Newsletter
	newsletterGroup := api.Group("/newsletter")
	newsletterGroup.Post("/subscribe", newsletter.Subscribe)
	newsletterGroup.Post("/verify", newsletter.Verify)
	newsletterGroup.Post("/unsubscribe", newsletter.Unsubscribe)
	newsletterGroup.Get("/", authed, adminOnly, newsletter.List)

	// Public ebook catalog
	ebookGroup := api.Group("/ebooks")
	ebookGroup.Get("/", ebooks.List)
	ebookGroup.Get("/popular", ebooks.Popular)
	ebookGroup.Post("/download", ebooks.Download)
	ebookGroup.Get("/:id", ebooks.Get)

	// Admin ebook management and analytics
	adminEbooks := api.Group("/admin/ebooks", authed, adminOnly)
	adminEbooks.Get("/", ebookAdmin.List)
	adminEbooks.Post("/", ebookAdmin.Create)
	adminEbooks.Get("/dashboard", ebookAdmin.Dashboard)
	adminEbooks.Get("/downloads", ebookAdmin.ListDownloads)
	adminEbooks.Get("/downloads/export", ebookAdmin.ExportDownloads)
	adminEbooks.Post("/send", ebookAdmin.Send)
	adminEbooks.Post("/bulk-send", ebookAdmin.BulkSend)
	adminEbooks.Get("/:id/stats", ebookAdmin.EbookStats)
	adminEbooks.Get("/:id", ebookAdmin.Get)
	adminEbooks.Put("/:id", ebookAdmin.Update)
	adminEbooks.Delete("/:id", ebookAdmin.Delete)

	// Admin user management
	adminUsers := api.Group("/admin/users", authed, adminOnly)
	adminUsers.Get("/", users.List)
	adminUsers.Post("/", users.Create)
	adminUsers.Get("/stats", users.Stats)
	adminUsers.Get("/:id", users.Get)
	adminUsers.Put("/:id", users.Update)
	adminUsers.Put("/:id/toggle-active", users.ToggleActive)
	adminUsers.Delete("/:id", users.Delete)

	// Uploads: authors and admins
	uploadGroup := api.Group("/upload", authed, writers)
	uploadGroup.Post("/image", uploads.Image)
	uploadGroup.Post("/images", uploads.Images)
	uploadGroup.Post("/video", uploads.Video)
	uploadGroup.Post("/direct", uploads.Direct)

	// File manager: admin only
	fileGroup := api.Group("/files", authed, adminOnly)
	fileGroup.Get("/", files.List)
	fileGroup.Delete("/", files.Delete)
	fileGroup.Post("/bulk-delete", files.BulkDelete)
}
