package entity

import "time"

// Product is a catalog item owned by a seller.
type Product struct {
	ID          int64
	SellerID    int64
	Name        string
	Price       float64
	Description string
	CategoryID  string
	Image       string // Path of the already-uploaded image, if any.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductPatch carries the fields of a partial update; zero values are left untouched.
type ProductPatch struct {
	Name        string
	Price       float64
	Description string
	CategoryID  string
	Image       string
}

// IsEmpty reports whether the patch would change nothing.
func (p *ProductPatch) IsEmpty() bool {
	return p.Name == "" && p.Price == 0 && p.Description == "" && p.CategoryID == "" && p.Image == ""
}

// Apply copies the non-zero fields of the patch onto the product.
func (p *ProductPatch) Apply(product *Product) {
	if p.Name != "" {
		product.Name = p.Name
	}
	if p.Price != 0 {
		product.Price = p.Price
	}
	if p.Description != "" {
		product.Description = p.Description
	}
	if p.CategoryID != "" {
		product.CategoryID = p.CategoryID
	}
	if p.Image != "" {
		product.Image = p.Image
	}
}
