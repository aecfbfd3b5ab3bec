package model

import (
	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/enum"
)

// Dish is a sub-grouping of products within an order, typically one diner's
// items. Products keep insertion order and are unique by Name.
type Dish struct {
	ID             string
	DisplayName    string
	Status         string
	SentCount      int
	ToGo           bool
	ToGoOverridden bool
	TotalAmount    decimal.Decimal
	Products       []*Product
}

// NewDish creates an empty dish in the New state.
func NewDish(id string) *Dish {
	return &Dish{
		ID:          id,
		Status:      enum.DishStatusNew,
		TotalAmount: decimal.Zero,
	}
}

// Clone returns a deep copy of the dish and its products.
func (d *Dish) Clone() *Dish {
	c := *d
	c.Products = make([]*Product, len(d.Products))
	for i, p := range d.Products {
		c.Products[i] = p.Clone()
	}
	return &c
}

// Product returns the product with the given name, or nil.
func (d *Dish) Product(name string) *Product {
	for _, p := range d.Products {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddProduct adds a line item. Adding a catalog product that is already
// present increments its quantity by one and backfills notes if the existing
// entry has none; custom products are always inserted as new entries.
// The dish total is recomputed before returning.
func (d *Dish) AddProduct(p *Product) {
	if existing := d.Product(p.Name); existing != nil && !p.IsCustom {
		existing.Quantity++
		if p.Notes != "" && existing.Notes == "" {
			existing.Notes = p.Notes
		}
		d.recomputeTotal()
		return
	}
	d.Products = append(d.Products, NewProduct(p.Name, p.Price, p.NotesShortcuts, p.Notes, p.IsCustom, p.DisplayName))
	d.recomputeTotal()
}

// RemoveProduct removes the named product. Returns false if it was not
// present; the dish is unchanged in that case.
func (d *Dish) RemoveProduct(name string) bool {
	for i, p := range d.Products {
		if p.Name == name {
			d.Products = append(d.Products[:i], d.Products[i+1:]...)
			d.recomputeTotal()
			return true
		}
	}
	return false
}

// RenameProduct changes a product's identity key. Fails if oldName is absent
// or newName already names a different product.
func (d *Dish) RenameProduct(oldName, newName string) bool {
	p := d.Product(oldName)
	if p == nil {
		return false
	}
	if newName != oldName && d.Product(newName) != nil {
		return false
	}
	if p.DisplayName == p.Name {
		p.DisplayName = newName
	}
	p.Name = newName
	return true
}

// SetProductQuantity sets the named product's quantity, clamped to a minimum
// of 1. Returns false if the product is absent.
func (d *Dish) SetProductQuantity(name string, quantity int) bool {
	p := d.Product(name)
	if p == nil {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	p.Quantity = quantity
	d.recomputeTotal()
	return true
}

// SetProductPrice sets the named product's unit price. Returns false if the
// product is absent.
func (d *Dish) SetProductPrice(name string, price decimal.Decimal) bool {
	p := d.Product(name)
	if p == nil {
		return false
	}
	p.Price = price
	d.recomputeTotal()
	return true
}

// Send transitions the dish into Sent. The sent counter increments only on
// the transition from a non-Sent state; re-sending is a no-op for the
// counter.
func (d *Dish) Send() {
	if d.Status != enum.DishStatusSent {
		d.SentCount++
	}
	d.Status = enum.DishStatusSent
}

// SetToGo sets the dish's to-go flag. While overridden the dish stops
// following the order-level flag; setting it back in line clears the
// override.
func (d *Dish) SetToGo(toGo bool, overridden bool) {
	d.ToGo = toGo
	d.ToGoOverridden = overridden
}

func (d *Dish) recomputeTotal() {
	total := decimal.Zero
	for _, p := range d.Products {
		total = total.Add(p.Subtotal())
	}
	d.TotalAmount = total
}

// RecomputeTotal recalculates the dish total from its products. Exposed for
// rehydration paths; mutators call it implicitly.
func (d *Dish) RecomputeTotal() {
	d.recomputeTotal()
}
