// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"energyfit/internal/domain/entity"
)

// PrincipalRepository persists administrators and sellers.
// Every method takes the kind explicitly; each kind maps to its own collection.
// An unknown kind yields ErrInvalidPrincipalKind.
type PrincipalRepository interface {
	// FindByEmail retrieves the principal of the given kind with that email.
	// Returns ErrPrincipalNotFound when there is none.
	FindByEmail(ctx context.Context, kind entity.PrincipalKind, email string) (*entity.Principal, error)

	// FindByID retrieves the principal of the given kind by identifier.
	FindByID(ctx context.Context, kind entity.PrincipalKind, id int64) (*entity.Principal, error)

	// Create inserts the principal into the collection named by principal.Kind and sets its ID.
	// A duplicate email within that collection yields ErrDuplicateEmail.
	Create(ctx context.Context, principal *entity.Principal) error

	// UpdatePasswordHash replaces the stored hash. A missing row yields ErrPrincipalNotFound.
	UpdatePasswordHash(ctx context.Context, kind entity.PrincipalKind, id int64, passwordHash string) error
}
