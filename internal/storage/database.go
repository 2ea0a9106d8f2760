package storage

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/l2h-tech/blog-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// translateError maps GORM errors onto the store sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if strings.Contains(err.Error(), "duplicate key") || errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// ---------- User operations ----------

func (s *DatabaseStore) CreateUser(user *models.User) error {
	return translateError(s.db.Create(user).Error)
}

func (s *DatabaseStore) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *DatabaseStore) ListUsers(filter *models.UserFilter) ([]*models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}
	if filter.Role != "" && filter.Role != "all" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	limit := pageLimit(filter.Limit, 10)
	var users []*models.User
	err := query.Order("created_at DESC").
		Offset(pageOffset(filter.Page, limit)).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return users, total, nil
}

func (s *DatabaseStore) UpdateUser(user *models.User) error {
	return translateError(s.db.Save(user).Error)
}

func (s *DatabaseStore) DeleteUser(id uint) error {
	res := s.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) CountUsersByRole() (map[string]int64, error) {
	type roleCount struct {
		Role  string
		Count int64
	}
	var rows []roleCount
	err := s.db.Model(&models.User{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Role] = r.Count
	}
	return counts, nil
}

func (s *DatabaseStore) CountUsersByStatus() (int64, int64, error) {
	var active, inactive int64
	if err := s.db.Model(&models.User{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, translateError(err)
	}
	if err := s.db.Model(&models.User{}).Where("is_active = ?", false).Count(&inactive).Error; err != nil {
		return 0, 0, translateError(err)
	}
	return active, inactive, nil
}

func (s *DatabaseStore) CountBlogsByAuthor(authorID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Blog{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, translateError(err)
}

// ---------- Category operations ----------

func (s *DatabaseStore) CreateCategory(category *models.BlogCategory) error {
	return translateError(s.db.Create(category).Error)
}

func (s *DatabaseStore) GetCategoryByID(id uint) (*models.BlogCategory, error) {
	var category models.BlogCategory
	if err := s.db.First(&category, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

func (s *DatabaseStore) GetCategoryBySlug(slug string) (*models.BlogCategory, error) {
	var category models.BlogCategory
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

func (s *DatabaseStore) ListCategories(status string) ([]*models.BlogCategory, error) {
	query := s.db.Model(&models.BlogCategory{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var categories []*models.BlogCategory
	if err := query.Order("position, name").Find(&categories).Error; err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

func (s *DatabaseStore) UpdateCategory(category *models.BlogCategory) error {
	return translateError(s.db.Save(category).Error)
}

func (s *DatabaseStore) DeleteCategory(id uint) error {
	res := s.db.Delete(&models.BlogCategory{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustPostCount applies a single atomic increment/decrement at the database
func (s *DatabaseStore) AdjustPostCount(categoryID uint, delta int) error {
	return translateError(s.db.Model(&models.BlogCategory{}).
		Where("id = ?", categoryID).
		UpdateColumn("post_count", gorm.Expr("post_count + ?", delta)).Error)
}

func (s *DatabaseStore) SetPostCount(categoryID uint, count int) error {
	return translateError(s.db.Model(&models.BlogCategory{}).
		Where("id = ?", categoryID).
		UpdateColumn("post_count", count).Error)
}

func (s *DatabaseStore) CountPublishedBlogsInCategory(categoryID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Blog{}).
		Where("category_id = ? AND status = ?", categoryID, models.BlogPublished).
		Count(&count).Error
	return count, translateError(err)
}

// ---------- Blog operations ----------

func (s *DatabaseStore) CreateBlog(blog *models.Blog) error {
	return translateError(s.db.Create(blog).Error)
}

func (s *DatabaseStore) GetBlogByID(id uint) (*models.Blog, error) {
	var blog models.Blog
	err := s.db.Preload("Category").Preload("Author").First(&blog, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &blog, nil
}

func (s *DatabaseStore) GetBlogBySlug(slug string) (*models.Blog, error) {
	var blog models.Blog
	err := s.db.Preload("Category").Preload("Author").Where("slug = ?", slug).First(&blog).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &blog, nil
}

func (s *DatabaseStore) ListBlogs(filter *models.BlogFilter) ([]*models.Blog, int64, error) {
	query := s.db.Model(&models.Blog{})

	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategorySlug != "" {
		category, err := s.GetCategoryBySlug(filter.CategorySlug)
		if err == nil {
			query = query.Where("category_id = ?", category.ID)
		}
	}
	if filter.Tag != "" {
		query = query.Where(`tags::text ILIKE ?`, `%"`+filter.Tag+`"%`)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"title ILIKE ? OR description ILIKE ? OR excerpt ILIKE ? OR tags::text ILIKE ?",
			like, like, like, like)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	limit := pageLimit(filter.Limit, 10)
	var blogs []*models.Blog
	err := query.Preload("Category").Preload("Author").
		Order(blogSortClause(filter.Sort)).
		Offset(pageOffset(filter.Page, limit)).
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return blogs, total, nil
}

func (s *DatabaseStore) UpdateBlog(blog *models.Blog) error {
	return translateError(s.db.Save(blog).Error)
}

func (s *DatabaseStore) DeleteBlog(id uint) error {
	res := s.db.Delete(&models.Blog{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) IncrementBlogViews(id uint) error {
	return translateError(s.db.Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error)
}

func (s *DatabaseStore) GetRelatedBlogs(blog *models.Blog, limit int) ([]*models.Blog, error) {
	query := s.db.Model(&models.Blog{}).
		Where("id <> ? AND status = ?", blog.ID, models.BlogPublished)

	// Related = same category or any shared tag
	cond := s.db.Where("category_id = ?", blog.CategoryID)
	for _, tag := range blog.Tags {
		cond = cond.Or(`tags::text ILIKE ?`, `%"`+tag+`"%`)
	}
	query = query.Where(cond)

	var blogs []*models.Blog
	err := query.Order("published_at DESC").Limit(limit).Find(&blogs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return blogs, nil
}

// ---------- Comment operations ----------

func (s *DatabaseStore) CreateComment(comment *models.BlogComment) error {
	return translateError(s.db.Create(comment).Error)
}

func (s *DatabaseStore) GetCommentByID(id uint) (*models.BlogComment, error) {
	var comment models.BlogComment
	if err := s.db.First(&comment, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &comment, nil
}

func (s *DatabaseStore) ListCommentsByBlog(blogID uint, status string) ([]*models.BlogComment, error) {
	query := s.db.Where("blog_id = ?", blogID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var comments []*models.BlogComment
	if err := query.Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, translateError(err)
	}
	return comments, nil
}

func (s *DatabaseStore) UpdateComment(comment *models.BlogComment) error {
	return translateError(s.db.Save(comment).Error)
}

func (s *DatabaseStore) DeleteComment(id uint) error {
	res := s.db.Delete(&models.BlogComment{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Newsletter operations ----------

func (s *DatabaseStore) CreateSubscriber(sub *models.Newsletter) error {
	return translateError(s.db.Create(sub).Error)
}

func (s *DatabaseStore) GetSubscriberByEmail(email string) (*models.Newsletter, error) {
	var sub models.Newsletter
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&sub).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &sub, nil
}

func (s *DatabaseStore) UpdateSubscriber(sub *models.Newsletter) error {
	return translateError(s.db.Save(sub).Error)
}

func (s *DatabaseStore) ListSubscribers(activeOnly bool) ([]*models.Newsletter, error) {
	query := s.db.Model(&models.Newsletter{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var subs []*models.Newsletter
	if err := query.Order("subscribed_at DESC").Find(&subs).Error; err != nil {
		return nil, translateError(err)
	}
	return subs, nil
}

// ---------- OTP operations ----------

func (s *DatabaseStore) CreateOTP(otp *models.OTP) error {
	return translateError(s.db.Create(otp).Error)
}

// GetActiveOTP matches email + exact code + purpose, unconsumed and unexpired
func (s *DatabaseStore) GetActiveOTP(email, code, purpose string) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.Where(
		"email = ? AND code = ? AND purpose = ? AND is_used = ? AND expires_at > ?",
		strings.ToLower(strings.TrimSpace(email)), code, purpose, false, time.Now()).
		First(&otp).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &otp, nil
}

// GetLatestPendingOTP returns the most recent unconsumed, unexpired code for
// the pair regardless of its value
func (s *DatabaseStore) GetLatestPendingOTP(email, purpose string) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.Where(
		"email = ? AND purpose = ? AND is_used = ? AND expires_at > ?",
		strings.ToLower(strings.TrimSpace(email)), purpose, false, time.Now()).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &otp, nil
}

// ConsumeOTP flips is_used in a single conditional update so two concurrent
// redemptions of the same code cannot both succeed
func (s *DatabaseStore) ConsumeOTP(id uint) (bool, error) {
	res := s.db.Model(&models.OTP{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *DatabaseStore) IncrementOTPAttempts(id uint) error {
	return translateError(s.db.Model(&models.OTP{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error)
}

func (s *DatabaseStore) DeleteExpiredOTPs() (int64, error) {
	res := s.db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&models.OTP{})
	return res.RowsAffected, translateError(res.Error)
}

// ---------- Ebook operations ----------

func (s *DatabaseStore) CreateEbook(ebook *models.Ebook) error {
	return translateError(s.db.Create(ebook).Error)
}

func (s *DatabaseStore) GetEbookByID(id uint) (*models.Ebook, error) {
	var ebook models.Ebook
	if err := s.db.First(&ebook, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &ebook, nil
}

func (s *DatabaseStore) GetEbookBySlug(slug string) (*models.Ebook, error) {
	var ebook models.Ebook
	if err := s.db.Where("slug = ?", slug).First(&ebook).Error; err != nil {
		return nil, translateError(err)
	}
	return &ebook, nil
}

func (s *DatabaseStore) ListEbooks(filter *models.EbookFilter) ([]*models.Ebook, int64, error) {
	query := s.db.Model(&models.Ebook{})

	if filter.ActiveOnly {
		query = query.Where("status = ?", models.EbookActive)
	} else if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Featured {
		query = query.Where("featured = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"name ILIKE ? OR description ILIKE ? OR tags::text ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	limit := pageLimit(filter.Limit, 12)
	var ebooks []*models.Ebook
	err := query.Order("position, created_at DESC").
		Offset(pageOffset(filter.Page, limit)).
		Limit(limit).
		Find(&ebooks).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return ebooks, total, nil
}

func (s *DatabaseStore) UpdateEbook(ebook *models.Ebook) error {
	return translateError(s.db.Save(ebook).Error)
}

func (s *DatabaseStore) DeleteEbook(id uint) error {
	res := s.db.Delete(&models.Ebook{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) IncrementEbookViews(id uint) error {
	return translateError(s.db.Model(&models.Ebook{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error)
}

func (s *DatabaseStore) AddEbookDownloads(id uint, n int) error {
	return translateError(s.db.Model(&models.Ebook{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", n)).Error)
}

func (s *DatabaseStore) PopularEbooks(limit int) ([]*models.Ebook, error) {
	var ebooks []*models.Ebook
	err := s.db.Where("status = ?", models.EbookActive).
		Order("download_count DESC").
		Limit(limit).
		Find(&ebooks).Error
	if err != nil {
		return nil, translateError(err)
	}
	return ebooks, nil
}

// ---------- Ebook download records ----------

func (s *DatabaseStore) CreateDownload(record *models.EbookDownload) error {
	return translateError(s.db.Create(record).Error)
}

func (s *DatabaseStore) CreateDownloads(records []*models.EbookDownload) error {
	if len(records) == 0 {
		return nil
	}
	return translateError(s.db.Create(&records).Error)
}

func (s *DatabaseStore) ListDownloads(filter *models.DownloadFilter) ([]*models.EbookDownload, int64, error) {
	query := s.downloadQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Offset(pageOffset(filter.Page, filter.Limit)).Limit(filter.Limit)
	}

	var downloads []*models.EbookDownload
	if err := query.Find(&downloads).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return downloads, total, nil
}

func (s *DatabaseStore) downloadQuery(filter *models.DownloadFilter) *gorm.DB {
	query := s.db.Model(&models.EbookDownload{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("email ILIKE ? OR name ILIKE ?", like, like)
	}
	if filter.EbookID != 0 {
		query = query.Where("ebook_id = ?", filter.EbookID)
	}
	if filter.Type != 0 {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		query = query.Where("created_at BETWEEN ? AND ?", *filter.StartDate, *filter.EndDate)
	}
	return query
}

func (s *DatabaseStore) CountDownloadsByType() (int64, int64, int64, error) {
	var total, user, admin int64
	if err := s.db.Model(&models.EbookDownload{}).Count(&total).Error; err != nil {
		return 0, 0, 0, translateError(err)
	}
	if err := s.db.Model(&models.EbookDownload{}).Where("type = ?", models.DownloadByUser).Count(&user).Error; err != nil {
		return 0, 0, 0, translateError(err)
	}
	if err := s.db.Model(&models.EbookDownload{}).Where("type = ?", models.DownloadByAdmin).Count(&admin).Error; err != nil {
		return 0, 0, 0, translateError(err)
	}
	return total, user, admin, nil
}

func (s *DatabaseStore) CountDownloadsForEbook(ebookID uint) (int64, int64, int64, error) {
	base := s.db.Model(&models.EbookDownload{}).Where("ebook_id = ?", ebookID)

	var total, user, admin int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, 0, translateError(err)
	}
	if err := base.Session(&gorm.Session{}).Where("type = ?", models.DownloadByUser).Count(&user).Error; err != nil {
		return 0, 0, 0, translateError(err)
	}
	if err := base.Session(&gorm.Session{}).Where("type = ?", models.DownloadByAdmin).Count(&admin).Error; err != nil {
		return 0, 0, 0, translateError(err)
	}
	return total, user, admin, nil
}

func (s *DatabaseStore) CountDistinctDownloadEmails(ebookID uint) (int64, error) {
	query := s.db.Model(&models.EbookDownload{}).Select("count(distinct email)")
	if ebookID != 0 {
		query = query.Where("ebook_id = ?", ebookID)
	}

	var count int64
	if err := query.Scan(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (s *DatabaseStore) TopDownloadedEbooks(limit int) ([]models.EbookDownloadStat, error) {
	var stats []models.EbookDownloadStat
	err := s.db.Model(&models.EbookDownload{}).
		Select("ebook_id, ebook_name, count(*) as count").
		Group("ebook_id, ebook_name").
		Order("count DESC").
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		return nil, translateError(err)
	}
	return stats, nil
}

func (s *DatabaseStore) DownloadsByDay(since time.Time) ([]models.DailyDownloadStat, error) {
	var stats []models.DailyDownloadStat
	err := s.db.Model(&models.EbookDownload{}).
		Select("to_char(created_at, 'YYYY-MM-DD') as day, count(*) as count").
		Where("created_at >= ?", since).
		Group("day").
		Order("day").
		Scan(&stats).Error
	if err != nil {
		return nil, translateError(err)
	}
	return stats, nil
}

// ---------- paging helpers ----------

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

func pageLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

// blogSortClause maps API sort keys onto safe ORDER BY clauses
func blogSortClause(sort string) string {
	desc := strings.HasPrefix(sort, "-")
	key := strings.TrimPrefix(sort, "-")

	column, ok := map[string]string{
		"publishedAt": "published_at",
		"createdAt":   "created_at",
		"viewCount":   "view_count",
		"position":    "position",
		"title":       "title",
	}[key]
	if !ok {
		return "published_at DESC NULLS LAST"
	}
	if desc {
		return column + " DESC NULLS LAST"
	}
	return column
}
