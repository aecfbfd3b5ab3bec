package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/model"
)

// ProductInput carries the fields needed to add a line item to a dish. For
// custom items Name may be left empty and the service generates an identity
// key.
type ProductInput struct {
	Name           string
	DisplayName    string
	Price          decimal.Decimal
	Notes          string
	NotesShortcuts []string
	IsCustom       bool
}

// OrderDetails is the register form: identification and billing fields of
// an order, edited as a unit.
type OrderDetails struct {
	Name                           string
	Table                          string
	ServiceDate                    string
	ToGo                           bool
	AdditionalNotes                string
	IncludeAdditionalNotesInTicket bool
	AmountPaid                     decimal.Decimal
}

// AddDish appends an empty dish to the active order and selects it.
func (s *OrderService) AddDish() (*model.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.editableActiveLocked()
	if err != nil {
		return nil, err
	}
	d := o.AddDish()
	d.SetToGo(o.ToGo, false)
	s.markDirtyLocked(o.ID)
	return d.Clone(), nil
}

// RemoveDish removes a dish from the active order. If the removed dish was
// selected, selection falls back to the first remaining dish.
func (s *OrderService) RemoveDish(dishID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.editableActiveLocked()
	if err != nil {
		return err
	}
	wasActive := o.ActiveDish != nil && o.ActiveDish.ID == dishID
	if !o.RemoveDish(dishID) {
		return fmt.Errorf("dish %s: %w", dishID, ErrDishNotFound)
	}
	if wasActive {
		o.ActiveDish = o.FirstDish()
	}
	o.RefreshSentStatus()
	s.markDirtyLocked(o.ID)
	return nil
}

// AddProduct adds a line item to the active dish. A repeated non-custom
// product merges into the existing line; custom products always get their
// own line under a generated key.
func (s *OrderService) AddProduct(in ProductInput) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, d, err := s.editableActiveDishLocked()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if in.IsCustom && name == "" {
		name = s.nextCustomKeyLocked()
	}
	if name == "" {
		return nil, fmt.Errorf("product name is empty: %w", ErrProductNotFound)
	}

	p := model.NewProduct(name, in.Price, in.NotesShortcuts, in.Notes, in.IsCustom, in.DisplayName)
	d.AddProduct(p)
	o.RecomputeTotal()
	s.markDirtyLocked(o.ID)
	return d.Product(name).Clone(), nil
}

// RemoveProduct removes a line item from the active dish.
func (s *OrderService) RemoveProduct(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, d, err := s.editableActiveDishLocked()
	if err != nil {
		return err
	}
	if !d.RemoveProduct(name) {
		return fmt.Errorf("product %s: %w", name, ErrProductNotFound)
	}
	o.RecomputeTotal()
	s.markDirtyLocked(o.ID)
	return nil
}

// RenameProduct changes a line item's name. A custom product keeps its
// generated identity key and only its display name changes, so two custom
// lines can share a label. Non-custom renames fail when the target name is
// taken.
func (s *OrderService) RenameProduct(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, d, err := s.editableActiveDishLocked()
	if err != nil {
		return err
	}
	p := d.Product(oldName)
	if p == nil {
		return fmt.Errorf("product %s: %w", oldName, ErrProductNotFound)
	}
	if p.IsCustom {
		p.DisplayName = newName
	} else {
		if d.Product(newName) != nil {
			return fmt.Errorf("product %s: %w", newName, ErrDuplicateName)
		}
		if !d.RenameProduct(oldName, newName) {
			return fmt.Errorf("product %s: %w", oldName, ErrProductNotFound)
		}
	}
	s.markDirtyLocked(o.ID)
	return nil
}

// SetProductQuantity updates a line item's quantity (floored at one) and
// retotals.
func (s *OrderService) SetProductQuantity(name string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, d, err := s.editableActiveDishLocked()
	if err != nil {
		return err
	}
	if !d.SetProductQuantity(name, quantity) {
		return fmt.Errorf("product %s: %w", name, ErrProductNotFound)
	}
	o.RecomputeTotal()
	s.markDirtyLocked(o.ID)
	return nil
}

// SetProductPrice updates a line item's unit price and retotals.
func (s *OrderService) SetProductPrice(name string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, d, err := s.editableActiveDishLocked()
	if err != nil {
		return err
	}
	if !d.SetProductPrice(name, price) {
		return fmt.Errorf("product %s: %w", name, ErrProductNotFound)
	}
	o.RecomputeTotal()
	s.markDirtyLocked(o.ID)
	return nil
}

// SetProductNotes replaces a line item's notes.
func (s *OrderService) SetProductNotes(name, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, d, err := s.editableActiveDishLocked()
	if err != nil {
		return err
	}
	p := d.Product(name)
	if p == nil {
		return fmt.Errorf("product %s: %w", name, ErrProductNotFound)
	}
	p.Notes = notes
	s.markDirtyLocked(o.ID)
	return nil
}

// RegisterOrderDetails applies the register form to the active order. A
// service date that is not a valid ISO date keeps the order's existing date,
// or today's when the order has none; flipping the order-level to-go flag
// propagates to dishes without a per-dish override.
func (s *OrderService) RegisterOrderDetails(details OrderDetails) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.editableActiveLocked()
	if err != nil {
		return nil, err
	}

	o.Name = strings.TrimSpace(details.Name)
	o.Table = strings.TrimSpace(details.Table)
	o.AdditionalNotes = details.AdditionalNotes
	o.IncludeAdditionalNotesInTicket = details.IncludeAdditionalNotesInTicket
	o.AmountPaid = details.AmountPaid

	date := strings.TrimSpace(details.ServiceDate)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		date = o.ServiceDate
		if date == "" {
			date = s.today()
		}
	}
	o.ServiceDate = date

	if o.ToGo != details.ToGo {
		o.ToGo = details.ToGo
		o.SyncDishesToGo()
	}
	s.markDirtyLocked(o.ID)
	return o.Clone(), nil
}

// SetDishToGo overrides the to-go flag of one dish. The override survives
// later changes to the order-level flag until ApplyToGoToAllDishes resets
// it.
func (s *OrderService) SetDishToGo(dishID string, toGo bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.editableActiveLocked()
	if err != nil {
		return err
	}
	d := o.Dish(dishID)
	if d == nil {
		return fmt.Errorf("dish %s: %w", dishID, ErrDishNotFound)
	}
	d.SetToGo(toGo, toGo != o.ToGo)
	s.markDirtyLocked(o.ID)
	return nil
}

// ApplyToGoToAllDishes sets the order-level to-go flag and forces it onto
// every dish, clearing per-dish overrides.
func (s *OrderService) ApplyToGoToAllDishes(toGo bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.editableActiveLocked()
	if err != nil {
		return err
	}
	o.ToGo = toGo
	o.ApplyToGoToAllDishes(toGo)
	s.markDirtyLocked(o.ID)
	return nil
}

func (s *OrderService) today() string {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now().Format("2006-01-02")
}

func (s *OrderService) editableActiveLocked() (*model.Order, error) {
	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	if !s.editableLocked(o) {
		return nil, fmt.Errorf("order %s: %w", o.ID, ErrOrderClosed)
	}
	return o, nil
}

func (s *OrderService) editableActiveDishLocked() (*model.Order, *model.Dish, error) {
	o, err := s.editableActiveLocked()
	if err != nil {
		return nil, nil, err
	}
	if o.ActiveDish == nil {
		return nil, nil, ErrNoActiveDish
	}
	return o, o.ActiveDish, nil
}
