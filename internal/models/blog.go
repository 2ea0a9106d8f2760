package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Blog statuses
const (
	BlogDraft     = "draft"
	BlogPublished = "published"
	BlogArchived  = "archived"
)

// DefaultCoverImage is used when no cover is supplied or the upload fails
const DefaultCoverImage = "https://placehold.co/800x400?font=roboto"

// Blog is a single post (article or video)
type Blog struct {
	gorm.Model

	Title       string   `json:"title" gorm:"not null"`
	Slug        string   `json:"slug" gorm:"uniqueIndex"`
	Description string   `json:"description" gorm:"type:text;not null"` // body HTML
	CoverImage  string   `json:"coverImage"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags" gorm:"serializer:json"`

	IsVideo   bool   `json:"isVideo" gorm:"default:false"`
	VideoType string `json:"videoType"` // "file" or "embed"
	VideoURL  string `json:"videoUrl"`

	Status      string     `json:"status" gorm:"default:draft;index"` // "draft", "published", "archived"
	PublishedAt *time.Time `json:"publishedAt" gorm:"index"`
	ViewCount   int        `json:"viewCount" gorm:"default:0"`
	Position    int        `json:"position" gorm:"default:0"`

	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	MetaKeywords    string `json:"metaKeywords"`

	CategoryID uint          `json:"categoryId" gorm:"index;not null"`
	Category   *BlogCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	AuthorID   uint          `json:"authorId" gorm:"index;not null"`
	Author     *User         `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// BeforeSave fills in the slug, excerpt and publish timestamp
func (b *Blog) BeforeSave(tx *gorm.DB) error {
	if b.Slug == "" && b.Title != "" {
		b.Slug = Slugify(b.Title)
	}
	if b.Excerpt == "" && b.Description != "" {
		b.Excerpt = makeExcerpt(b.Description, 297)
	}
	if b.CoverImage == "" {
		b.CoverImage = DefaultCoverImage
	}
	if b.Status == BlogPublished && b.PublishedAt == nil {
		now := time.Now()
		b.PublishedAt = &now
	}
	return nil
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// makeExcerpt strips HTML tags and truncates to maxLen runes
func makeExcerpt(html string, maxLen int) string {
	plain := htmlTag.ReplaceAllString(html, "")
	plain = strings.TrimSpace(plain)
	runes := []rune(plain)
	if len(runes) <= maxLen {
		return plain
	}
	return string(runes[:maxLen]) + "..."
}

// BlogFilter narrows blog listings
type BlogFilter struct {
	Status       string // "draft", "published", "archived" or "all"
	CategorySlug string
	Tag          string
	Search       string // free text against title/description/excerpt/tags
	AuthorID     uint
	Page         int
	Limit        int
	Sort         string // e.g. "-published_at"
}
