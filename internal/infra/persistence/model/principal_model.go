package model

import (
	"time"
)

// AdministradorModel mirrors the 'administradores' table.
type AdministradorModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Nome      string `gorm:"type:varchar(255);not null"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex:idx_administradores_email"`
	Senha     string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AdministradorModel) TableName() string {
	return "administradores"
}

// VendedorModel mirrors the 'vendedores' table. Telefone is optional.
type VendedorModel struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Nome      string  `gorm:"type:varchar(255);not null"`
	Email     string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_vendedores_email"`
	Senha     string  `gorm:"type:varchar(255);not null"`
	Telefone  *string `gorm:"type:varchar(30)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (VendedorModel) TableName() string {
	return "vendedores"
}
