package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/l2h-tech/blog-backend/internal/models"
	"gorm.io/gorm"
)

// MemoryStore holds all data in memory. Used by the test suite and for local
// development without a database (USE_MEMORY_STORE=true).
type MemoryStore struct {
	mu sync.RWMutex

	users       map[uint]models.User
	categories  map[uint]models.BlogCategory
	blogs       map[uint]models.Blog
	comments    map[uint]models.BlogComment
	subscribers map[uint]models.Newsletter
	otps        map[uint]models.OTP
	ebooks      map[uint]models.Ebook
	downloads   map[uint]models.EbookDownload

	nextID uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[uint]models.User),
		categories:  make(map[uint]models.BlogCategory),
		blogs:       make(map[uint]models.Blog),
		comments:    make(map[uint]models.BlogComment),
		subscribers: make(map[uint]models.Newsletter),
		otps:        make(map[uint]models.OTP),
		ebooks:      make(map[uint]models.Ebook),
		downloads:   make(map[uint]models.EbookDownload),
	}
}

func (m *MemoryStore) allocate(model *gorm.Model) {
	m.nextID++
	model.ID = m.nextID
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now
}

func matchesLike(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ---------- User operations ----------

func (m *MemoryStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	m.allocate(&user.Model)
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByID(id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = normalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListUsers(filter *models.UserFilter) ([]*models.User, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.User
	for _, user := range m.users {
		if filter.Search != "" && !matchesLike(user.Name, filter.Search) && !matchesLike(user.Email, filter.Search) {
			continue
		}
		if filter.Role != "" && filter.Role != "all" && user.Role != filter.Role {
			continue
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	page := paginate(len(matched), filter.Page, pageLimit(filter.Limit, 10))
	users := make([]*models.User, 0, page.Len())
	for i := range matched[page.start:page.end] {
		u := matched[page.start+i]
		users = append(users, &u)
	}
	return users, total, nil
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) DeleteUser(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) CountUsersByRole() (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, user := range m.users {
		counts[user.Role]++
	}
	return counts, nil
}

func (m *MemoryStore) CountUsersByStatus() (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active, inactive int64
	for _, user := range m.users {
		if user.IsActive {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

func (m *MemoryStore) CountBlogsByAuthor(authorID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, blog := range m.blogs {
		if blog.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

// ---------- Category operations ----------

func (m *MemoryStore) CreateCategory(category *models.BlogCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.Slug == "" {
		category.Slug = models.Slugify(category.Name)
	}
	if category.Status == "" {
		category.Status = models.CategoryActive
	}
	for _, existing := range m.categories {
		if existing.Name == category.Name || existing.Slug == category.Slug {
			return ErrDuplicate
		}
	}
	m.allocate(&category.Model)
	m.categories[category.ID] = *category
	return nil
}

func (m *MemoryStore) GetCategoryByID(id uint) (*models.BlogCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &category, nil
}

func (m *MemoryStore) GetCategoryBySlug(slug string) (*models.BlogCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, category := range m.categories {
		if category.Slug == slug {
			c := category
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListCategories(status string) ([]*models.BlogCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var categories []*models.BlogCategory
	for _, category := range m.categories {
		if status != "" && status != "all" && category.Status != status {
			continue
		}
		c := category
		categories = append(categories, &c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Position != categories[j].Position {
			return categories[i].Position < categories[j].Position
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (m *MemoryStore) UpdateCategory(category *models.BlogCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[category.ID]; !ok {
		return ErrNotFound
	}
	category.UpdatedAt = time.Now()
	m.categories[category.ID] = *category
	return nil
}

func (m *MemoryStore) DeleteCategory(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *MemoryStore) AdjustPostCount(categoryID uint, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.categories[categoryID]
	if !ok {
		return ErrNotFound
	}
	category.PostCount += delta
	m.categories[categoryID] = category
	return nil
}

func (m *MemoryStore) SetPostCount(categoryID uint, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.categories[categoryID]
	if !ok {
		return ErrNotFound
	}
	category.PostCount = count
	m.categories[categoryID] = category
	return nil
}

func (m *MemoryStore) CountPublishedBlogsInCategory(categoryID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, blog := range m.blogs {
		if blog.CategoryID == categoryID && blog.Status == models.BlogPublished {
			count++
		}
	}
	return count, nil
}

// ---------- Blog operations ----------

func (m *MemoryStore) CreateBlog(blog *models.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if blog.Slug == "" {
		blog.Slug = models.Slugify(blog.Title)
	}
	for _, existing := range m.blogs {
		if existing.Slug == blog.Slug {
			return ErrDuplicate
		}
	}
	if blog.CoverImage == "" {
		blog.CoverImage = models.DefaultCoverImage
	}
	if blog.Status == "" {
		blog.Status = models.BlogDraft
	}
	if blog.Status == models.BlogPublished && blog.PublishedAt == nil {
		now := time.Now()
		blog.PublishedAt = &now
	}
	m.allocate(&blog.Model)
	m.blogs[blog.ID] = *blog
	return nil
}

func (m *MemoryStore) GetBlogByID(id uint) (*models.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blogByID(id)
}

func (m *MemoryStore) blogByID(id uint) (*models.Blog, error) {
	blog, ok := m.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.attachRelations(&blog)
	return &blog, nil
}

func (m *MemoryStore) attachRelations(blog *models.Blog) {
	if category, ok := m.categories[blog.CategoryID]; ok {
		c := category
		blog.Category = &c
	}
	if author, ok := m.users[blog.AuthorID]; ok {
		a := author
		blog.Author = &a
	}
}

func (m *MemoryStore) GetBlogBySlug(slug string) (*models.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, blog := range m.blogs {
		if blog.Slug == slug {
			b := blog
			m.attachRelations(&b)
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListBlogs(filter *models.BlogFilter) ([]*models.Blog, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var categoryID uint
	if filter.CategorySlug != "" {
		for _, category := range m.categories {
			if category.Slug == filter.CategorySlug {
				categoryID = category.ID
			}
		}
	}

	var matched []models.Blog
	for _, blog := range m.blogs {
		if filter.Status != "" && filter.Status != "all" && blog.Status != filter.Status {
			continue
		}
		if categoryID != 0 && blog.CategoryID != categoryID {
			continue
		}
		if filter.Tag != "" && !hasTag(blog.Tags, filter.Tag) {
			continue
		}
		if filter.Search != "" &&
			!matchesLike(blog.Title, filter.Search) &&
			!matchesLike(blog.Description, filter.Search) &&
			!matchesLike(blog.Excerpt, filter.Search) &&
			!matchesLike(strings.Join(blog.Tags, " "), filter.Search) {
			continue
		}
		if filter.AuthorID != 0 && blog.AuthorID != filter.AuthorID {
			continue
		}
		matched = append(matched, blog)
	}
	sort.Slice(matched, func(i, j int) bool {
		pi, pj := matched[i].PublishedAt, matched[j].PublishedAt
		if pi == nil {
			return false
		}
		if pj == nil {
			return true
		}
		return pi.After(*pj)
	})

	total := int64(len(matched))
	page := paginate(len(matched), filter.Page, pageLimit(filter.Limit, 10))
	blogs := make([]*models.Blog, 0, page.Len())
	for i := range matched[page.start:page.end] {
		b := matched[page.start+i]
		m.attachRelations(&b)
		blogs = append(blogs, &b)
	}
	return blogs, total, nil
}

func (m *MemoryStore) UpdateBlog(blog *models.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blogs[blog.ID]; !ok {
		return ErrNotFound
	}
	if blog.Status == models.BlogPublished && blog.PublishedAt == nil {
		now := time.Now()
		blog.PublishedAt = &now
	}
	blog.UpdatedAt = time.Now()
	stored := *blog
	stored.Category = nil
	stored.Author = nil
	m.blogs[blog.ID] = stored
	return nil
}

func (m *MemoryStore) DeleteBlog(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blogs[id]; !ok {
		return ErrNotFound
	}
	delete(m.blogs, id)
	return nil
}

func (m *MemoryStore) IncrementBlogViews(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	blog, ok := m.blogs[id]
	if !ok {
		return ErrNotFound
	}
	blog.ViewCount++
	m.blogs[id] = blog
	return nil
}

func (m *MemoryStore) GetRelatedBlogs(blog *models.Blog, limit int) ([]*models.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var related []*models.Blog
	for _, candidate := range m.blogs {
		if candidate.ID == blog.ID || candidate.Status != models.BlogPublished {
			continue
		}
		shared := candidate.CategoryID == blog.CategoryID
		for _, tag := range blog.Tags {
			if hasTag(candidate.Tags, tag) {
				shared = true
			}
		}
		if shared {
			c := candidate
			related = append(related, &c)
		}
	}
	sort.Slice(related, func(i, j int) bool {
		pi, pj := related[i].PublishedAt, related[j].PublishedAt
		if pi == nil {
			return false
		}
		if pj == nil {
			return true
		}
		return pi.After(*pj)
	})
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}

// ---------- Comment operations ----------

func (m *MemoryStore) CreateComment(comment *models.BlogComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment.Email = normalizeEmail(comment.Email)
	if comment.Status == "" {
		comment.Status = models.CommentPending
	}
	m.allocate(&comment.Model)
	m.comments[comment.ID] = *comment
	return nil
}

func (m *MemoryStore) GetCommentByID(id uint) (*models.BlogComment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comment, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comment, nil
}

func (m *MemoryStore) ListCommentsByBlog(blogID uint, status string) ([]*models.BlogComment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var comments []*models.BlogComment
	for _, comment := range m.comments {
		if comment.BlogID != blogID {
			continue
		}
		if status != "" && status != "all" && comment.Status != status {
			continue
		}
		c := comment
		comments = append(comments, &c)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func (m *MemoryStore) UpdateComment(comment *models.BlogComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[comment.ID]; !ok {
		return ErrNotFound
	}
	comment.UpdatedAt = time.Now()
	m.comments[comment.ID] = *comment
	return nil
}

func (m *MemoryStore) DeleteComment(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

// ---------- Newsletter operations ----------

func (m *MemoryStore) CreateSubscriber(sub *models.Newsletter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub.Email = normalizeEmail(sub.Email)
	for _, existing := range m.subscribers {
		if existing.Email == sub.Email {
			return ErrDuplicate
		}
	}
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = time.Now()
	}
	m.allocate(&sub.Model)
	m.subscribers[sub.ID] = *sub
	return nil
}

func (m *MemoryStore) GetSubscriberByEmail(email string) (*models.Newsletter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = normalizeEmail(email)
	for _, sub := range m.subscribers {
		if sub.Email == email {
			s := sub
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateSubscriber(sub *models.Newsletter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscribers[sub.ID]; !ok {
		return ErrNotFound
	}
	sub.UpdatedAt = time.Now()
	m.subscribers[sub.ID] = *sub
	return nil
}

func (m *MemoryStore) ListSubscribers(activeOnly bool) ([]*models.Newsletter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var subs []*models.Newsletter
	for _, sub := range m.subscribers {
		if activeOnly && !sub.IsActive {
			continue
		}
		s := sub
		subs = append(subs, &s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubscribedAt.After(subs[j].SubscribedAt) })
	return subs, nil
}

// ---------- OTP operations ----------

func (m *MemoryStore) CreateOTP(otp *models.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	otp.Email = normalizeEmail(otp.Email)
	m.allocate(&otp.Model)
	m.otps[otp.ID] = *otp
	return nil
}

func (m *MemoryStore) GetActiveOTP(email, code, purpose string) (*models.OTP, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = normalizeEmail(email)
	now := time.Now()
	for _, otp := range m.otps {
		if otp.Email == email && otp.Code == code && otp.Purpose == purpose &&
			!otp.IsUsed && otp.ExpiresAt.After(now) {
			o := otp
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetLatestPendingOTP(email, purpose string) (*models.OTP, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = normalizeEmail(email)
	now := time.Now()
	var latest *models.OTP
	for _, otp := range m.otps {
		if otp.Email != email || otp.Purpose != purpose || otp.IsUsed || !otp.ExpiresAt.After(now) {
			continue
		}
		o := otp
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = &o
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryStore) ConsumeOTP(id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	otp, ok := m.otps[id]
	if !ok || otp.IsUsed {
		return false, nil
	}
	otp.IsUsed = true
	m.otps[id] = otp
	return true, nil
}

func (m *MemoryStore) IncrementOTPAttempts(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	otp, ok := m.otps[id]
	if !ok {
		return ErrNotFound
	}
	otp.Attempts++
	m.otps[id] = otp
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var removed int64
	for id, otp := range m.otps {
		if otp.ExpiresAt.Before(now) {
			delete(m.otps, id)
			removed++
		}
	}
	return removed, nil
}

// ---------- Ebook operations ----------

func (m *MemoryStore) CreateEbook(ebook *models.Ebook) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ebook.Slug == "" {
		ebook.Slug = models.Slugify(ebook.Name)
	}
	for _, existing := range m.ebooks {
		if existing.Slug == ebook.Slug {
			return ErrDuplicate
		}
	}
	if ebook.BookLanguage == "" {
		ebook.BookLanguage = "English"
	}
	m.allocate(&ebook.Model)
	m.ebooks[ebook.ID] = *ebook
	return nil
}

func (m *MemoryStore) GetEbookByID(id uint) (*models.Ebook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ebook, ok := m.ebooks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ebook, nil
}

func (m *MemoryStore) GetEbookBySlug(slug string) (*models.Ebook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ebook := range m.ebooks {
		if ebook.Slug == slug {
			e := ebook
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListEbooks(filter *models.EbookFilter) ([]*models.Ebook, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Ebook
	for _, ebook := range m.ebooks {
		if filter.ActiveOnly && ebook.Status != models.EbookActive {
			continue
		}
		if !filter.ActiveOnly && filter.Status != nil && ebook.Status != *filter.Status {
			continue
		}
		if filter.Category != "" && ebook.Category != filter.Category {
			continue
		}
		if filter.Featured && !ebook.Featured {
			continue
		}
		if filter.Search != "" &&
			!matchesLike(ebook.Name, filter.Search) &&
			!matchesLike(ebook.Description, filter.Search) &&
			!matchesLike(strings.Join(ebook.Tags, " "), filter.Search) {
			continue
		}
		matched = append(matched, ebook)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Position != matched[j].Position {
			return matched[i].Position < matched[j].Position
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page := paginate(len(matched), filter.Page, pageLimit(filter.Limit, 12))
	ebooks := make([]*models.Ebook, 0, page.Len())
	for i := range matched[page.start:page.end] {
		e := matched[page.start+i]
		ebooks = append(ebooks, &e)
	}
	return ebooks, total, nil
}

func (m *MemoryStore) UpdateEbook(ebook *models.Ebook) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ebooks[ebook.ID]; !ok {
		return ErrNotFound
	}
	ebook.UpdatedAt = time.Now()
	m.ebooks[ebook.ID] = *ebook
	return nil
}

func (m *MemoryStore) DeleteEbook(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ebooks[id]; !ok {
		return ErrNotFound
	}
	delete(m.ebooks, id)
	return nil
}

func (m *MemoryStore) IncrementEbookViews(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ebook, ok := m.ebooks[id]
	if !ok {
		return ErrNotFound
	}
	ebook.ViewCount++
	m.ebooks[id] = ebook
	return nil
}

func (m *MemoryStore) AddEbookDownloads(id uint, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ebook, ok := m.ebooks[id]
	if !ok {
		return ErrNotFound
	}
	ebook.DownloadCount += n
	m.ebooks[id] = ebook
	return nil
}

func (m *MemoryStore) PopularEbooks(limit int) ([]*models.Ebook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ebooks []*models.Ebook
	for _, ebook := range m.ebooks {
		if ebook.Status != models.EbookActive {
			continue
		}
		e := ebook
		ebooks = append(ebooks, &e)
	}
	sort.Slice(ebooks, func(i, j int) bool { return ebooks[i].DownloadCount > ebooks[j].DownloadCount })
	if limit > 0 && len(ebooks) > limit {
		ebooks = ebooks[:limit]
	}
	return ebooks, nil
}

// ---------- Ebook download records ----------

func (m *MemoryStore) CreateDownload(record *models.EbookDownload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createDownloadLocked(record)
	return nil
}

func (m *MemoryStore) createDownloadLocked(record *models.EbookDownload) {
	record.Email = normalizeEmail(record.Email)
	if record.DownloadedAt.IsZero() {
		record.DownloadedAt = time.Now()
	}
	m.allocate(&record.Model)
	m.downloads[record.ID] = *record
}

func (m *MemoryStore) CreateDownloads(records []*models.EbookDownload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range records {
		m.createDownloadLocked(record)
	}
	return nil
}

func (m *MemoryStore) ListDownloads(filter *models.DownloadFilter) ([]*models.EbookDownload, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.EbookDownload
	for _, d := range m.downloads {
		if filter.Search != "" && !matchesLike(d.Email, filter.Search) && !matchesLike(d.Name, filter.Search) {
			continue
		}
		if filter.EbookID != 0 && d.EbookID != filter.EbookID {
			continue
		}
		if filter.Type != 0 && d.Type != filter.Type {
			continue
		}
		if filter.StartDate != nil && filter.EndDate != nil &&
			(d.CreatedAt.Before(*filter.StartDate) || d.CreatedAt.After(*filter.EndDate)) {
			continue
		}
		matched = append(matched, d)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if filter.Limit <= 0 {
		downloads := make([]*models.EbookDownload, 0, len(matched))
		for i := range matched {
			d := matched[i]
			downloads = append(downloads, &d)
		}
		return downloads, total, nil
	}

	page := paginate(len(matched), filter.Page, filter.Limit)
	downloads := make([]*models.EbookDownload, 0, page.Len())
	for i := range matched[page.start:page.end] {
		d := matched[page.start+i]
		downloads = append(downloads, &d)
	}
	return downloads, total, nil
}

func (m *MemoryStore) CountDownloadsByType() (int64, int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total, user, admin int64
	for _, d := range m.downloads {
		total++
		switch d.Type {
		case models.DownloadByUser:
			user++
		case models.DownloadByAdmin:
			admin++
		}
	}
	return total, user, admin, nil
}

func (m *MemoryStore) CountDownloadsForEbook(ebookID uint) (int64, int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total, user, admin int64
	for _, d := range m.downloads {
		if d.EbookID != ebookID {
			continue
		}
		total++
		switch d.Type {
		case models.DownloadByUser:
			user++
		case models.DownloadByAdmin:
			admin++
		}
	}
	return total, user, admin, nil
}

func (m *MemoryStore) CountDistinctDownloadEmails(ebookID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, d := range m.downloads {
		if ebookID != 0 && d.EbookID != ebookID {
			continue
		}
		seen[d.Email] = struct{}{}
	}
	return int64(len(seen)), nil
}

func (m *MemoryStore) TopDownloadedEbooks(limit int) ([]models.EbookDownloadStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byEbook := make(map[uint]*models.EbookDownloadStat)
	for _, d := range m.downloads {
		stat, ok := byEbook[d.EbookID]
		if !ok {
			stat = &models.EbookDownloadStat{EbookID: d.EbookID, EbookName: d.EbookName}
			byEbook[d.EbookID] = stat
		}
		stat.Count++
	}

	stats := make([]models.EbookDownloadStat, 0, len(byEbook))
	for _, stat := range byEbook {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (m *MemoryStore) DownloadsByDay(since time.Time) ([]models.DailyDownloadStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDay := make(map[string]int64)
	for _, d := range m.downloads {
		if d.CreatedAt.Before(since) {
			continue
		}
		byDay[d.CreatedAt.Format("2006-01-02")]++
	}

	stats := make([]models.DailyDownloadStat, 0, len(byDay))
	for day, count := range byDay {
		stats = append(stats, models.DailyDownloadStat{Day: day, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Day < stats[j].Day })
	return stats, nil
}

// ---------- paging ----------

type pageWindow struct{ start, end int }

func (p pageWindow) Len() int { return p.end - p.start }

func paginate(total, page, limit int) pageWindow {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return pageWindow{start: start, end: end}
}
