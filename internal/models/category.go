package models

import "gorm.io/gorm"

// Category statuses
const (
	CategoryActive   = "active"
	CategoryInactive = "inactive"
)

// BlogCategory groups blogs and carries a denormalized published-post counter
type BlogCategory struct {
	gorm.Model

	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex"`
	Description string `json:"description"`
	Status      string `json:"status" gorm:"default:active;index"` // "active" or "inactive"
	Position    int    `json:"position" gorm:"default:0"`

	// Count of published blogs in this category. Maintained incrementally by
	// the blog handlers; cmd/recount rebuilds it from scratch.
	PostCount int `json:"postCount" gorm:"default:0"`
}

// BeforeSave auto-generates the slug from the name when missing
func (c *BlogCategory) BeforeSave(tx *gorm.DB) error {
	if c.Slug == "" && c.Name != "" {
		c.Slug = Slugify(c.Name)
	}
	if c.Status == "" {
		c.Status = CategoryActive
	}
	return nil
}
