package model

import "github.com/shopspring/decimal"

// Product is a single line item within a dish. For catalog products Name is
// the menu product name; for custom products it is a generated key
// independent of the user-visible DisplayName.
type Product struct {
	Name           string
	DisplayName    string
	Price          decimal.Decimal
	Quantity       int
	Notes          string
	NotesShortcuts []string
	IsCustom       bool
}

// NewProduct creates a product with quantity 1. An empty displayName falls
// back to name.
func NewProduct(name string, price decimal.Decimal, shortcuts []string, notes string, isCustom bool, displayName string) *Product {
	if displayName == "" {
		displayName = name
	}
	return &Product{
		Name:           name,
		DisplayName:    displayName,
		Price:          price,
		Quantity:       1,
		Notes:          notes,
		NotesShortcuts: shortcuts,
		IsCustom:       isCustom,
	}
}

// Clone returns a copy of the product with its own shortcuts slice.
func (p *Product) Clone() *Product {
	c := *p
	c.NotesShortcuts = append([]string(nil), p.NotesShortcuts...)
	return &c
}

// Subtotal returns price times quantity.
func (p *Product) Subtotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
