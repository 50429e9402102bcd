package model

import (
	"time"
)

// PedidoModel mirrors the 'pedidos' table.
type PedidoModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ClienteID   int64     `gorm:"index:idx_pedidos_cliente_id"`
	ClienteNome string    `gorm:"type:varchar(255)"`
	VendedorID  int64     `gorm:"not null;index:idx_pedidos_vendedor_id"`
	Total       float64   `gorm:"not null"`
	Status      string    `gorm:"type:varchar(30);not null;index:idx_pedidos_status"`
	CriadoEm    time.Time `gorm:"autoCreateTime"`
}

// TableName explicitly sets the table name for GORM.
func (PedidoModel) TableName() string {
	return "pedidos"
}

// PedidoItemModel mirrors the 'pedido_itens' table. Products referenced by an
// item cannot be deleted.
type PedidoItemModel struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	PedidoID      int64   `gorm:"not null;index:idx_pedido_itens_pedido_id"`
	ProdutoID     int64   `gorm:"not null;index:idx_pedido_itens_produto_id"`
	Quantidade    int     `gorm:"not null"`
	PrecoUnitario float64 `gorm:"not null"`

	Pedido  PedidoModel  `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE"`
	Produto ProdutoModel `gorm:"foreignKey:ProdutoID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (PedidoItemModel) TableName() string {
	return "pedido_itens"
}
