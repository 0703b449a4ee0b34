package util

import (
	"fmt"
	"regexp"
	"time"

	"fincontrol/internal/models"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks basic e-mail shape and length.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 128 {
		return fmt.Errorf("email too long, max 128 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateNome checks a user or category name (non-empty, reasonable length).
func ValidateNome(nome string) error {
	if nome == "" {
		return fmt.Errorf("nome is empty")
	}
	if len(nome) > 64 {
		return fmt.Errorf("nome too long, max 64 characters")
	}
	return nil
}

// ValidateTipo checks the transaction type code.
func ValidateTipo(tipo string) error {
	if tipo != models.TipoDespesa && tipo != models.TipoReceita {
		return fmt.Errorf("tipo must be %q (despesa) or %q (receita)", models.TipoDespesa, models.TipoReceita)
	}
	return nil
}

// ParseData parses a transaction date. Accepts RFC3339 or YYYY-MM-DD.
func ParseData(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("data is empty")
	}
	layouts := []string{
		time.RFC3339,          // 2024-12-03T00:00:00Z
		"2006-01-02T15:04:05", // 2024-12-03T00:00:00
		"2006-01-02",          // 2024-12-03
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", dateStr)
}
