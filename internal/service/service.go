// Package service orchestrates the order aggregate against the store: it
// owns the in-memory set of open orders, the operator's current selection,
// and the business rules around editing, sending and closing. One service
// instance is the sole mutator of its backing store.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/padrino-pos/api/internal/enum"
	"github.com/padrino-pos/api/internal/model"
	"github.com/padrino-pos/api/internal/ordernum"
	"github.com/padrino-pos/api/internal/store"
)

// Errors returned by the order service. Validation failures are values, not
// panics; callers surface them to the operator.
var (
	ErrNoActiveOrder   = errors.New("no active order")
	ErrNoActiveDish    = errors.New("no active dish")
	ErrOrderNotFound   = errors.New("order not found")
	ErrDishNotFound    = errors.New("dish not found")
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateName   = errors.New("a product with that name already exists")
	ErrOrderClosed     = errors.New("order is closed")
	ErrInvalidStatus   = errors.New("invalid order status")
)

// OrderStore defines the persistence methods the service needs. Satisfied
// by *store.Store; narrow interface for testability.
type OrderStore interface {
	SaveOrder(ctx context.Context, order *model.Order) error
	LoadOpenOrders(ctx context.Context) ([]*model.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	ListMenuItems(ctx context.Context) ([]store.MenuItem, error)
	ListTables(ctx context.Context) ([]store.Table, error)
}

var customKeyPattern = regexp.MustCompile(`^producto_libre_(\d+)$`)

// OrderService mediates between the API layer and the aggregate + store.
// All methods are safe for concurrent use; a single mutex serializes
// mutations (single-writer model). Methods returning orders, dishes or
// products return deep copies taken under the lock, so callers can read
// them without racing later mutations.
type OrderService struct {
	mu    sync.Mutex
	repo  OrderStore
	gen   *ordernum.Generator
	clock Clock

	orders        []*model.Order
	activeOrderID string

	// Per-session operator overrides allowing edits to closed orders.
	// Never persisted.
	unlockedClosed map[string]bool

	// Orders with unsaved in-memory edits, flushed by the autosave job.
	dirty map[string]bool

	customProductCounter int
}

// Clock abstracts time for service-date normalization in tests.
type Clock func() string // returns today's ISO date

// NewOrderService creates the service. gen must already be seeded from the
// store's historical maximum. clock may be nil for the real calendar.
func NewOrderService(repo OrderStore, gen *ordernum.Generator, clock Clock) *OrderService {
	return &OrderService{
		repo:           repo,
		gen:            gen,
		clock:          clock,
		unlockedClosed: make(map[string]bool),
		dirty:          make(map[string]bool),
	}
}

// Load hydrates the open-order set from the store. Called once at startup.
// The custom-product counter is seeded past every key in use so generated
// keys stay unique across restarts.
func (s *OrderService) Load(ctx context.Context) error {
	orders, err := s.repo.LoadOpenOrders(ctx)
	if err != nil {
		return fmt.Errorf("load open orders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.activeOrderID = ""
	for _, o := range orders {
		for _, d := range o.Dishes {
			for _, p := range d.Products {
				if m := customKeyPattern.FindStringSubmatch(p.Name); m != nil {
					if n, err := strconv.Atoi(m[1]); err == nil && n > s.customProductCounter {
						s.customProductCounter = n
					}
				}
			}
		}
	}
	return nil
}

// Orders returns copies of the in-memory orders in insertion order.
func (s *OrderService) Orders() []*model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Order returns a copy of the in-memory order with the given id, or nil.
func (s *OrderService) Order(orderID string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.find(orderID); o != nil {
		return o.Clone()
	}
	return nil
}

// ActiveOrder returns a copy of the currently selected order, or nil.
func (s *OrderService) ActiveOrder() *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.activeLocked(); o != nil {
		return o.Clone()
	}
	return nil
}

// ActiveOrderID returns the id of the currently selected order, or the
// empty string.
func (s *OrderService) ActiveOrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeOrderID
}

// ActiveDish returns a copy of the active order's selected dish, or nil.
func (s *OrderService) ActiveDish() *model.Dish {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.activeLocked(); o != nil && o.ActiveDish != nil {
		return o.ActiveDish.Clone()
	}
	return nil
}

// SelectOrder makes the order with the given id the active one. If its dish
// selection is stale it falls back to the first dish.
func (s *OrderService) SelectOrder(orderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.find(orderID)
	if o == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	s.activeOrderID = orderID
	if o.ActiveDish == nil || o.Dish(o.ActiveDish.ID) == nil {
		o.ActiveDish = o.FirstDish()
	}
	return o.Clone(), nil
}

// SelectDish selects a dish within the active order.
func (s *OrderService) SelectDish(dishID string) (*model.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	d := o.SetActiveDish(dishID)
	if d == nil {
		return nil, fmt.Errorf("dish %s: %w", dishID, ErrDishNotFound)
	}
	return d.Clone(), nil
}

// ClearSelection drops the active order selection.
func (s *OrderService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeOrderID = ""
}

// UnlockClosedOrder grants a per-session operator override making a closed
// order editable. The override is never persisted.
func (s *OrderService) UnlockClosedOrder(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlockedClosed[orderID] = true
}

// RelockOrder revokes a previously granted override.
func (s *OrderService) RelockOrder(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.unlockedClosed, orderID)
}

// IsEditable reports whether the order may be edited: it is not Closed, or
// the operator has unlocked it for this session.
func (s *OrderService) IsEditable(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.find(orderID)
	return o != nil && s.editableLocked(o)
}

// NextCustomProductKey returns a fresh identity key for a custom line item,
// distinct from its user-visible display name.
func (s *OrderService) NextCustomProductKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextCustomKeyLocked()
}

// --- internal helpers (caller holds s.mu) ---

func (s *OrderService) find(orderID string) *model.Order {
	for _, o := range s.orders {
		if o.ID == orderID {
			return o
		}
	}
	return nil
}

func (s *OrderService) activeLocked() *model.Order {
	if s.activeOrderID == "" {
		return nil
	}
	return s.find(s.activeOrderID)
}

func (s *OrderService) editableLocked(o *model.Order) bool {
	return o.Status != enum.OrderStatusClosed || s.unlockedClosed[o.ID]
}

func (s *OrderService) nextCustomKeyLocked() string {
	s.customProductCounter++
	return fmt.Sprintf("producto_libre_%d", s.customProductCounter)
}

func (s *OrderService) markDirtyLocked(orderID string) {
	s.dirty[orderID] = true
}
