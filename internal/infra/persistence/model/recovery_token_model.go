package model

import (
	"time"
)

// TokenRecuperacaoModel mirrors the 'tokens_recuperacao' table.
// TokenHash holds the SHA-256 digest; the plaintext token is never persisted.
type TokenRecuperacaoModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UsuarioID   int64     `gorm:"not null;index:idx_tokens_recuperacao_usuario"`
	TipoUsuario string    `gorm:"type:varchar(20);not null;index:idx_tokens_recuperacao_usuario"`
	TokenHash   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_tokens_recuperacao_token_hash"`
	Expiracao   time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (TokenRecuperacaoModel) TableName() string {
	return "tokens_recuperacao"
}
