package storage

import (
	"errors"
	"time"

	"github.com/l2h-tech/blog-backend/internal/models"
)

// Sentinel errors returned by every Store implementation
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(filter *models.UserFilter) ([]*models.User, int64, error)
	UpdateUser(user *models.User) error
	DeleteUser(id uint) error
	CountUsersByRole() (map[string]int64, error)
	CountUsersByStatus() (active int64, inactive int64, err error)
	CountBlogsByAuthor(authorID uint) (int64, error)

	// Category operations
	CreateCategory(category *models.BlogCategory) error
	GetCategoryByID(id uint) (*models.BlogCategory, error)
	GetCategoryBySlug(slug string) (*models.BlogCategory, error)
	ListCategories(status string) ([]*models.BlogCategory, error)
	UpdateCategory(category *models.BlogCategory) error
	DeleteCategory(id uint) error
	AdjustPostCount(categoryID uint, delta int) error
	SetPostCount(categoryID uint, count int) error
	CountPublishedBlogsInCategory(categoryID uint) (int64, error)

	// Blog operations
	CreateBlog(blog *models.Blog) error
	GetBlogByID(id uint) (*models.Blog, error)
	GetBlogBySlug(slug string) (*models.Blog, error)
	ListBlogs(filter *models.BlogFilter) ([]*models.Blog, int64, error)
	UpdateBlog(blog *models.Blog) error
	DeleteBlog(id uint) error
	IncrementBlogViews(id uint) error
	GetRelatedBlogs(blog *models.Blog, limit int) ([]*models.Blog, error)

	// Comment operations
	CreateComment(comment *models.BlogComment) error
	GetCommentByID(id uint) (*models.BlogComment, error)
	ListCommentsByBlog(blogID uint, status string) ([]*models.BlogComment, error)
	UpdateComment(comment *models.BlogComment) error
	DeleteComment(id uint) error

	// Newsletter operations
	CreateSubscriber(sub *models.Newsletter) error
	GetSubscriberByEmail(email string) (*models.Newsletter, error)
	UpdateSubscriber(sub *models.Newsletter) error
	ListSubscribers(activeOnly bool) ([]*models.Newsletter, error)

	// OTP operations
	CreateOTP(otp *models.OTP) error
	GetActiveOTP(email, code, purpose string) (*models.OTP, error)
	GetLatestPendingOTP(email, purpose string) (*models.OTP, error)
	ConsumeOTP(id uint) (bool, error) // atomic is_used false->true; false when already consumed
	IncrementOTPAttempts(id uint) error
	DeleteExpiredOTPs() (int64, error)

	// Ebook operations
	CreateEbook(ebook *models.Ebook) error
	GetEbookByID(id uint) (*models.Ebook, error)
	GetEbookBySlug(slug string) (*models.Ebook, error)
	ListEbooks(filter *models.EbookFilter) ([]*models.Ebook, int64, error)
	UpdateEbook(ebook *models.Ebook) error
	DeleteEbook(id uint) error
	IncrementEbookViews(id uint) error
	AddEbookDownloads(id uint, n int) error
	PopularEbooks(limit int) ([]*models.Ebook, error)

	// Ebook download records (analytics)
	CreateDownload(record *models.EbookDownload) error
	CreateDownloads(records []*models.EbookDownload) error
	ListDownloads(filter *models.DownloadFilter) ([]*models.EbookDownload, int64, error)
	CountDownloadsByType() (total, user, admin int64, err error)
	CountDownloadsForEbook(ebookID uint) (total, user, admin int64, err error)
	CountDistinctDownloadEmails(ebookID uint) (int64, error) // ebookID 0 = across all ebooks
	TopDownloadedEbooks(limit int) ([]models.EbookDownloadStat, error)
	DownloadsByDay(since time.Time) ([]models.DailyDownloadStat, error)
}
