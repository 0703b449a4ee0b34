package models

import "time"

// User represents an application user.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"size:64;not null" json:"nome"`
	Email     string    `gorm:"size:128;uniqueIndex;not null" json:"email"`
	SenhaHash string    `gorm:"size:255;not null" json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
