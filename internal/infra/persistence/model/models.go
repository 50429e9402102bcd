// Package model holds the GORM persistence models. They never leave the infra layer;
// repositories map them to domain entities.
package model

// All lists every model managed by schema migration.
func All() []any {
	return []any{
		&AdministradorModel{},
		&VendedorModel{},
		&TokenRecuperacaoModel{},
		&SessaoModel{},
		&ProdutoModel{},
		&PedidoModel{},
		&PedidoItemModel{},
	}
}
