// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account on the platform. Every user doubles as a
// channel that other users can subscribe to.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	FullName string `gorm:"not null" json:"full_name"`
	Password string `gorm:"not null" json:"-"`
	Avatar   string `gorm:"not null" json:"avatar"`
	// CoverImage is optional; empty means the user never uploaded one.
	CoverImage string `json:"cover_image,omitempty"`
	// RefreshToken holds the single active refresh token for the user.
	// NULL means the user is logged out everywhere. A presented refresh
	// token is only valid if it byte-matches this value.
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// Sanitized returns a copy safe for API responses. Password and refresh
// token are already excluded from JSON, but clearing them here keeps
// secrets out of logs and caches too.
func (u User) Sanitized() User {
	u.Password = ""
	u.RefreshToken = nil
	return u
}
