package model

import (
	"time"
)

// ProdutoModel mirrors the 'produtos' table.
type ProdutoModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	VendedorID  int64   `gorm:"not null;index:idx_produtos_vendedor_id"`
	Nome        string  `gorm:"type:varchar(255);not null"`
	Preco       float64 `gorm:"not null"`
	Descricao   string  `gorm:"type:text"`
	CategoriaID string  `gorm:"type:varchar(50)"`
	Imagem      string  `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProdutoModel) TableName() string {
	return "produtos"
}
