package models

import "time"

// CategoriaTransacao attributes part of a transaction's value to one
// category. A transaction may be split across several categories; the sum
// of the links always equals the transaction's total.
type CategoriaTransacao struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransacaoID   uint      `gorm:"index;not null" json:"idTransacao"`
	CategoriaID   uint      `gorm:"index;not null" json:"idCategoria"`
	ValorCentavos int64     `gorm:"not null" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`

	Categoria Categoria `gorm:"constraint:OnDelete:RESTRICT" json:"categoria,omitempty"`
}
