package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/padrino-pos/api/internal/enum"
	"github.com/padrino-pos/api/internal/model"
	"github.com/padrino-pos/api/internal/store"
)

// NewOrder creates an empty order with a freshly issued identifier and
// selects it.
func (s *OrderService) NewOrder() *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := model.NewOrder(s.gen.Next(), time.Now())
	s.orders = append(s.orders, o)
	s.activeOrderID = o.ID
	s.markDirtyLocked(o.ID)
	return o.Clone()
}

// SetOrderStatus moves the active order between New and In progress. A
// closed order is locked; Closed itself is only reachable through
// CloseOrder.
func (s *OrderService) SetOrderStatus(status string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	if o.Status == enum.OrderStatusClosed {
		return nil, ErrOrderClosed
	}

	switch strings.ToLower(strings.TrimSpace(status)) {
	case "new":
		o.Status = enum.OrderStatusNew
	case "in progress":
		o.Status = enum.OrderStatusInProgress
	default:
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	s.markDirtyLocked(o.ID)
	return o.Clone(), nil
}

// SendDish marks one dish of the active order Sent and persists
// immediately.
func (s *OrderService) SendDish(ctx context.Context, dishID string) (*model.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	d := o.Dish(dishID)
	if d == nil {
		return nil, fmt.Errorf("dish %s: %w", dishID, ErrDishNotFound)
	}
	d.Send()
	o.RefreshSentStatus()
	if err := s.saveLocked(ctx, o); err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// SendAllDishes marks every dish of the active order Sent and persists
// immediately.
func (s *OrderService) SendAllDishes(ctx context.Context) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	o.SendAllDishes()
	if err := s.saveLocked(ctx, o); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// CloseOrder closes the active order and persists immediately. The store
// stamps closed_at on the first close.
func (s *OrderService) CloseOrder(ctx context.Context) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	o.Close()
	if err := s.saveLocked(ctx, o); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// ReopenOrder returns a closed active order to New. Dish statuses and the
// stored first-close timestamp are untouched.
func (s *OrderService) ReopenOrder(ctx context.Context) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	if o.Status != enum.OrderStatusClosed {
		return o.Clone(), nil
	}
	o.Reopen()
	if err := s.saveLocked(ctx, o); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// PersistActiveOrder writes the active order to the store.
func (s *OrderService) PersistActiveOrder(ctx context.Context) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.activeLocked()
	if o == nil {
		return nil, ErrNoActiveOrder
	}
	if err := s.saveLocked(ctx, o); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// PersistOrder writes a specific in-memory order to the store.
func (s *OrderService) PersistOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.find(orderID)
	if o == nil {
		return fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	return s.saveLocked(ctx, o)
}

// DeleteOrder removes an order from the store and from memory. Deleting an
// order that was never saved is not an error; the store still records its
// identifier so it is never reissued. Removing the active order clears the
// selection.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteOrder(ctx, orderID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	for i, o := range s.orders {
		if o.ID == orderID {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			break
		}
	}
	delete(s.dirty, orderID)
	delete(s.unlockedClosed, orderID)
	if s.activeOrderID == orderID {
		s.activeOrderID = ""
	}
	return nil
}

// FlushDirty persists every order with unsaved in-memory edits. Used by the
// autosave job; failed saves stay dirty and are retried on the next run.
func (s *OrderService) FlushDirty(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for id := range s.dirty {
		o := s.find(id)
		if o == nil {
			delete(s.dirty, id)
			continue
		}
		if err := s.repo.SaveOrder(ctx, o); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(s.dirty, id)
	}
	return firstErr
}

// DirtyCount reports how many orders have unsaved edits.
func (s *OrderService) DirtyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty)
}

// saveLocked persists o and clears its dirty flag. A failed save keeps the
// in-memory state untouched so a retry is safe.
func (s *OrderService) saveLocked(ctx context.Context, o *model.Order) error {
	if err := s.repo.SaveOrder(ctx, o); err != nil {
		return fmt.Errorf("save order %s: %w", o.ID, err)
	}
	delete(s.dirty, o.ID)
	return nil
}
