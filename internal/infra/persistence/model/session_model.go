package model

import (
	"time"
)

// SessaoModel mirrors the 'sessoes' table: one row per live cookie session.
type SessaoModel struct {
	IDHash      string    `gorm:"type:varchar(64);primaryKey"`
	UsuarioID   int64     `gorm:"not null"`
	TipoUsuario string    `gorm:"type:varchar(20);not null"`
	Nome        string    `gorm:"type:varchar(255)"`
	Email       string    `gorm:"type:varchar(255)"`
	ExpiraEm    time.Time `gorm:"not null;index:idx_sessoes_expira_em"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessaoModel) TableName() string {
	return "sessoes"
}
