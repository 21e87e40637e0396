// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered author in the Inkwell application.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}
