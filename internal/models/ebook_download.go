package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Download record types
const (
	DownloadByUser  = 1 // visitor requested the ebook themselves
	DownloadByAdmin = 2 // an admin pushed the ebook to an email
)

// Type descriptions
const (
	TypeUserDirectDownload = "user-direct-download"
	TypeAdminSingleSend    = "admin-single-send"
	TypeAdminBulkSend      = "admin-bulk-send"
)

// EbookDownload records every time an ebook link was handed out, whether the
// visitor asked for it or an admin pushed it. Drives the download analytics.
type EbookDownload struct {
	gorm.Model

	Name        string `json:"name" gorm:"not null"`
	Email       string `json:"email" gorm:"index;not null"`
	Mobile      string `json:"mobile"`
	CountryCode string `json:"countryCode" gorm:"default:+91"`

	EbookName string `json:"ebookName" gorm:"not null"` // denormalized for exports
	EbookID   uint   `json:"ebookId" gorm:"index;not null"`

	HearAbout string `json:"hearAbout"`
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`

	DownloadedAt    time.Time `json:"downloadedAt"`
	EmailSent       bool      `json:"emailSent" gorm:"default:false"`
	Type            int       `json:"type" gorm:"default:1;index"` // 1=user, 2=admin
	TypeDescription string    `json:"typeDescription"`
	SentBy          string    `json:"sentBy" gorm:"default:user"` // "user" or "admin"
	SentByUserID    uint      `json:"sentByUserId"`
}

// BeforeCreate normalizes the email and stamps the download time
func (d *EbookDownload) BeforeCreate(tx *gorm.DB) error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now()
	}
	return nil
}

// DownloadFilter narrows download listings and exports
type DownloadFilter struct {
	Search    string // matches email or name
	EbookID   uint
	Type      int // 0 = all
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// EbookDownloadStat is one row of the "top ebooks" dashboard aggregate
type EbookDownloadStat struct {
	EbookID   uint   `json:"ebookId"`
	EbookName string `json:"ebookName"`
	Count     int64  `json:"count"`
}

// DailyDownloadStat is one day of download volume
type DailyDownloadStat struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
