package models

import "time"

// Categoria is a user-scoped income/expense category.
type Categoria struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"idUsuario"`
	Nome      string    `gorm:"size:64;not null" json:"nome"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
