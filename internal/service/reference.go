package service

import (
	"context"
	"fmt"
	"log"

	"github.com/padrino-pos/api/internal/store"
)

// CustomProductDisplayName is the default label for a free-form line item
// before the operator renames it.
const CustomProductDisplayName = "Custom product"

// defaultTableCount drives the fallback table list when the tables
// reference data is empty or unreadable.
const defaultTableCount = 4

// MenuProducts returns the active menu as product inputs ready to add to a
// dish, plus a trailing custom-product entry. A store failure degrades to
// just the custom entry; an order can always be typed in by hand.
func (s *OrderService) MenuProducts(ctx context.Context) []ProductInput {
	items, err := s.repo.ListMenuItems(ctx)
	if err != nil {
		log.Printf("list menu items: %v", err)
		items = nil
	}

	out := make([]ProductInput, 0, len(items)+1)
	for _, it := range items {
		if !it.IsActive {
			continue
		}
		out = append(out, ProductInput{
			Name:           it.Name,
			DisplayName:    it.Name,
			Price:          it.Cost,
			NotesShortcuts: it.Shortcuts,
		})
	}
	out = append(out, ProductInput{
		DisplayName: CustomProductDisplayName,
		IsCustom:    true,
	})
	return out
}

// MenuItems returns the raw menu reference rows, empty on failure.
func (s *OrderService) MenuItems(ctx context.Context) []store.MenuItem {
	items, err := s.repo.ListMenuItems(ctx)
	if err != nil {
		log.Printf("list menu items: %v", err)
		return nil
	}
	return items
}

// TableNames returns the active table names in display order. When the
// reference data is empty or unreadable it falls back to a fixed set of
// numbered tables.
func (s *OrderService) TableNames(ctx context.Context) []string {
	tables, err := s.repo.ListTables(ctx)
	if err != nil {
		log.Printf("list tables: %v", err)
		tables = nil
	}

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		if t.IsActive {
			names = append(names, t.Name)
		}
	}
	if len(names) == 0 {
		for i := 1; i <= defaultTableCount; i++ {
			names = append(names, fmt.Sprintf("Table %d", i))
		}
	}
	return names
}
