package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/enum"
)

// Order is the root aggregate: a customer ticket holding dishes in insertion
// order. All mutators leave the totals consistent with membership.
//
// ClosedAt is the first-close timestamp, stamped by the store on save; it
// stays zero until the order has been closed at least once and survives a
// reopen. ActiveDish is a selection reference into Dishes, maintained by the
// orchestration layer; it is never persisted.
type Order struct {
	ID                             string
	CreatedAt                      time.Time
	ClosedAt                       time.Time
	ServiceDate                    string
	Name                           string
	Table                          string
	AdditionalNotes                string
	IncludeAdditionalNotesInTicket bool
	Status                         string
	SentStatus                     bool
	ToGo                           bool
	AmountPaid                     decimal.Decimal
	TotalAmount                    decimal.Decimal
	Dishes                         []*Dish
	ActiveDish                     *Dish
}

// NewOrder creates an empty order in the New state. The service date
// defaults to createdAt's calendar date.
func NewOrder(id string, createdAt time.Time) *Order {
	return &Order{
		ID:          id,
		CreatedAt:   createdAt,
		ServiceDate: createdAt.Format("2006-01-02"),
		Status:      enum.OrderStatusNew,
		AmountPaid:  decimal.Zero,
		TotalAmount: decimal.Zero,
	}
}

// Clone returns a deep copy detached from the live aggregate. The active
// dish selection maps onto the corresponding copied dish.
func (o *Order) Clone() *Order {
	c := *o
	c.Dishes = make([]*Dish, len(o.Dishes))
	c.ActiveDish = nil
	for i, d := range o.Dishes {
		c.Dishes[i] = d.Clone()
		if o.ActiveDish == d {
			c.ActiveDish = c.Dishes[i]
		}
	}
	return &c
}

// AddDish appends a new empty dish, makes it the active dish, renumbers
// display names and recomputes the order total.
func (o *Order) AddDish() *Dish {
	d := NewDish(uuid.NewString())
	o.Dishes = append(o.Dishes, d)
	o.ActiveDish = d
	o.RenumberDishes()
	o.RecomputeTotal()
	return d
}

// RemoveDish removes the dish with the given id, renumbers the remaining
// dishes and recomputes the total. Re-selecting an active dish is the
// caller's responsibility. Returns false if the id is unknown.
func (o *Order) RemoveDish(dishID string) bool {
	for i, d := range o.Dishes {
		if d.ID == dishID {
			o.Dishes = append(o.Dishes[:i], o.Dishes[i+1:]...)
			o.RenumberDishes()
			o.RecomputeTotal()
			return true
		}
	}
	return false
}

// Dish returns the dish with the given id, or nil.
func (o *Order) Dish(dishID string) *Dish {
	for _, d := range o.Dishes {
		if d.ID == dishID {
			return d
		}
	}
	return nil
}

// SetActiveDish selects the dish with the given id. Returns nil if the id is
// unknown; the selection is unchanged in that case.
func (o *Order) SetActiveDish(dishID string) *Dish {
	d := o.Dish(dishID)
	if d == nil {
		return nil
	}
	o.ActiveDish = d
	return d
}

// FirstDish returns the first dish in insertion order, or nil.
func (o *Order) FirstDish() *Dish {
	if len(o.Dishes) == 0 {
		return nil
	}
	return o.Dishes[0]
}

// RenumberDishes reassigns display names as a dense "Dish 1".."Dish N"
// sequence reflecting current membership order.
func (o *Order) RenumberDishes() {
	for i, d := range o.Dishes {
		d.DisplayName = fmt.Sprintf("Dish %d", i+1)
	}
}

// RecomputeTotal recalculates the order total as the sum of dish totals.
func (o *Order) RecomputeTotal() {
	total := decimal.Zero
	for _, d := range o.Dishes {
		total = total.Add(d.TotalAmount)
	}
	o.TotalAmount = total
}

// SendAllDishes marks every dish Sent and refreshes the aggregate sent
// status.
func (o *Order) SendAllDishes() {
	for _, d := range o.Dishes {
		d.Send()
	}
	o.RefreshSentStatus()
}

// RefreshSentStatus recomputes SentStatus as the AND of all dishes being
// Sent. An order with no dishes is not sent.
func (o *Order) RefreshSentStatus() {
	if len(o.Dishes) == 0 {
		o.SentStatus = false
		return
	}
	for _, d := range o.Dishes {
		if d.Status != enum.DishStatusSent {
			o.SentStatus = false
			return
		}
	}
	o.SentStatus = true
}

// Close marks the order Closed. The first-close timestamp is stamped by the
// store on save, where it can be compared against persisted state.
func (o *Order) Close() {
	o.Status = enum.OrderStatusClosed
}

// Reopen returns a closed order to the New state. Dish statuses and
// SentStatus are left untouched.
func (o *Order) Reopen() {
	o.Status = enum.OrderStatusNew
}

// SyncDishesToGo propagates the order-level to-go flag to every dish that
// has not individually overridden it.
func (o *Order) SyncDishesToGo() {
	for _, d := range o.Dishes {
		if !d.ToGoOverridden {
			d.ToGo = o.ToGo
		}
	}
}

// ApplyToGoToAllDishes forces the given to-go flag onto every dish and
// clears any per-dish overrides.
func (o *Order) ApplyToGoToAllDishes(toGo bool) {
	for _, d := range o.Dishes {
		d.ToGo = toGo
		d.ToGoOverridden = false
	}
}
