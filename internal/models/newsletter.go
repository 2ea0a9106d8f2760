package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Newsletter is a newsletter subscriber. Unsubscribing deactivates the row
// instead of deleting it so a later subscribe can reactivate.
type Newsletter struct {
	gorm.Model

	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	Name           string     `json:"name"`
	IsActive       bool       `json:"isActive" gorm:"default:true;index"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt"`
}

// BeforeCreate normalizes the email and stamps the subscription time
func (n *Newsletter) BeforeCreate(tx *gorm.DB) error {
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	if n.SubscribedAt.IsZero() {
		n.SubscribedAt = time.Now()
	}
	return nil
}
