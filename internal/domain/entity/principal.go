// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// PrincipalKind tags which collection a principal lives in.
type PrincipalKind string

const (
	// PrincipalKindAdmin indicates an administrator.
	PrincipalKindAdmin PrincipalKind = "admin"
	// PrincipalKindSeller indicates a seller (vendedor).
	PrincipalKindSeller PrincipalKind = "vendedor"
)

// String returns the string representation of the PrincipalKind.
func (k PrincipalKind) String() string {
	return string(k)
}

// IsValid checks if the PrincipalKind is a valid value.
func (k PrincipalKind) IsValid() bool {
	switch k {
	case PrincipalKindAdmin, PrincipalKindSeller:
		return true
	default:
		return false
	}
}

// PrincipalKinds is a set of kinds allowed through a guard.
type PrincipalKinds []PrincipalKind

// Contains checks if the set contains a specific kind.
func (ks PrincipalKinds) Contains(kind PrincipalKind) bool {
	for _, k := range ks {
		if k == kind {
			return true
		}
	}

	return false
}

// Principal is an authenticated identity: an administrator or a seller.
// Both variants share this shape but are stored in disjoint collections, so the
// same email may exist once per kind.
type Principal struct {
	ID           int64         // Identifier, unique within its own collection only.
	Kind         PrincipalKind // Collection the row was read from or will be written to.
	Name         string        // Display name.
	Email        string        // Login identifier, unique within the collection.
	PasswordHash string        // bcrypt hash; plaintext is never stored.
	Phone        *string       // Sellers only, optional.
	CreatedAt    time.Time
}

// View returns the unified, password-free projection of the principal.
func (p *Principal) View() *PrincipalView {
	return &PrincipalView{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Kind:  p.Kind,
	}
}

// PrincipalView is what login hands out and what a session stores.
type PrincipalView struct {
	ID    int64         `json:"id"`
	Name  string        `json:"nome"`
	Email string        `json:"email"`
	Kind  PrincipalKind `json:"tipo"`
}
