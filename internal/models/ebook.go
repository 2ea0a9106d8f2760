package models

import "gorm.io/gorm"

// Ebook statuses (numeric, kept from the catalog import format)
const (
	EbookInactive = 0
	EbookActive   = 1
)

// Ebook is a downloadable book in the catalog
type Ebook struct {
	gorm.Model

	Name        string   `json:"name" gorm:"not null"`
	Slug        string   `json:"slug" gorm:"uniqueIndex;not null"`
	Description string   `json:"description"`
	Image       string   `json:"image" gorm:"not null"`    // cover image URL
	Brochure    string   `json:"brochure" gorm:"not null"` // PDF key or absolute URL
	Category    string   `json:"category"`
	Tags        []string `json:"tags" gorm:"serializer:json"`

	FileSize     int    `json:"fileSize"` // bytes
	PageCount    int    `json:"pageCount"`
	Author       string `json:"author"`
	PublishYear  int    `json:"publishYear"`
	BookLanguage string `json:"bookLanguage" gorm:"default:English"`

	Status        int  `json:"status" gorm:"default:1;index"` // 0=inactive, 1=active
	Position      int  `json:"position" gorm:"default:0"`
	DownloadCount int  `json:"downloadCount" gorm:"default:0"`
	ViewCount     int  `json:"viewCount" gorm:"default:0"`
	Featured      bool `json:"featured" gorm:"default:false"`
}

// BeforeSave auto-generates the slug from the name when missing
func (e *Ebook) BeforeSave(tx *gorm.DB) error {
	if e.Slug == "" && e.Name != "" {
		e.Slug = Slugify(e.Name)
	}
	return nil
}

// EbookFilter narrows catalog listings
type EbookFilter struct {
	Category   string
	Search     string
	Featured   bool
	ActiveOnly bool
	Status     *int // admin filter, nil = all
	Page       int
	Limit      int
}
