package database

import (
	"fmt"

	"fincontrol/internal/config"
	"fincontrol/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the administrator account if it does not exist yet.
// The password is always stored as a bcrypt hash.
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig, bcryptCost int) error {
	if cfg.Email == "" || cfg.Senha == "" {
		return fmt.Errorf("admin email and senha must be configured")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", cfg.Email).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Senha), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	nome := cfg.Nome
	if nome == "" {
		nome = "Admin User"
	}

	admin := models.User{
		Nome:      nome,
		Email:     cfg.Email,
		SenhaHash: string(hash),
		IsAdmin:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}
