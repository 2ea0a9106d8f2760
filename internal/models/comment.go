package models

import (
	"strings"

	"gorm.io/gorm"
)

// Comment moderation statuses
const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
)

// BlogComment is a reader comment on a blog. Comments are created only after
// the reader proves email ownership through the OTP flow, and always start in
// "pending" until an admin moderates them.
type BlogComment struct {
	gorm.Model

	Name        string `json:"name" gorm:"not null"`
	Email       string `json:"email" gorm:"not null"`
	Mobile      string `json:"mobile"`
	CountryCode string `json:"countryCode" gorm:"default:+1"`
	Comment     string `json:"comment" gorm:"type:text;not null"`
	HearAbout   string `json:"hearAbout"`

	Status string `json:"status" gorm:"default:pending;index"` // "pending", "approved", "rejected"

	BlogID uint  `json:"blogId" gorm:"index;not null"`
	Blog   *Blog `json:"blog,omitempty" gorm:"foreignKey:BlogID"`

	// Origin metadata captured at submission time
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
}

// BeforeCreate normalizes the email and defaults the moderation status
func (c *BlogComment) BeforeCreate(tx *gorm.DB) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Status == "" {
		c.Status = CommentPending
	}
	return nil
}
