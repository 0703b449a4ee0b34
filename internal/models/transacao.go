package models

import "time"

// Transaction types as stored and sent over the wire.
const (
	TipoDespesa = "1"
	TipoReceita = "2"
)

// Transacao is a single ledger entry.
// Values are stored in centavos to avoid float drift; ValorCentavos is
// always the sum of the category link values (the write path enforces it).
type Transacao struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"idUsuario"`
	Descricao     string    `gorm:"size:255;not null" json:"descricao"`
	ValorCentavos int64     `gorm:"not null" json:"-"`
	Data          time.Time `gorm:"index;not null" json:"data"`
	Tipo          string    `gorm:"size:2;index;not null" json:"tipo"` // TipoDespesa / TipoReceita
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	User       User                 `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Categorias []CategoriaTransacao `gorm:"foreignKey:TransacaoID" json:"categorias,omitempty"`
}
