package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleUser   = "user"
)

// User represents a platform account (admin, author or plain user)
type User struct {
	gorm.Model

	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	Name     string `json:"name" gorm:"not null"`
	Role     string `json:"role" gorm:"default:user"` // "admin", "author", "user"
	Bio      string `json:"bio"`
	Image    string `json:"image"`

	// Social links shown on author profiles
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	YouTube   string `json:"youtube"`

	IsActive bool `json:"isActive" gorm:"default:true"`
}

// BeforeCreate normalizes the email and defaults the role
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// SetPassword hashes and stores a plaintext password
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares a plaintext password against the stored hash
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// UserRegistration is the request body for /auth/register
type UserRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// UserFilter narrows admin user listings
type UserFilter struct {
	Search string // matches name or email, case-insensitive
	Role   string // "admin", "author", "user" or "" / "all"
	Page   int
	Limit  int
}
