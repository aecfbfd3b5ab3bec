package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/padrino-pos/api/internal/enum"
)

func TestMenuItemCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateMenuItem(ctx, MenuItem{
		Name:        "Taco Pastor",
		Cost:        money("30"),
		Shortcuts:   []string{"no onion", "extra salsa"},
		Color:       "#ff6600",
		Shape:       enum.ShapeRectangle,
		Position:    1,
		ProductType: enum.ProductTypeFood,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := s.ListMenuItems(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("item count = %d, want 1", len(items))
	}
	got := items[0]
	if got.Name != "Taco Pastor" || !got.Cost.Equal(money("30")) || !got.IsActive {
		t.Errorf("item did not round-trip: %+v", got)
	}
	if !reflect.DeepEqual(got.Shortcuts, []string{"no onion", "extra salsa"}) {
		t.Errorf("shortcuts = %v", got.Shortcuts)
	}

	got.Cost = money("32.50")
	got.IsActive = false
	if err := s.UpdateMenuItem(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ = s.ListMenuItems(ctx)
	if items[0].IsActive || !items[0].Cost.Equal(money("32.50")) {
		t.Errorf("update did not stick: %+v", items[0])
	}

	if err := s.DeleteMenuItem(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteMenuItem(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestTableCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateTable(ctx, Table{Name: "Patio 1", Position: 3, IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateTable(ctx, Table{Name: "Patio 1"}); err == nil {
		t.Error("duplicate table name should violate the unique constraint")
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "Patio 1" || tables[0].Position != 3 {
		t.Errorf("tables = %+v", tables)
	}

	if err := s.UpdateTable(ctx, Table{ID: id, Name: "Patio 2", Position: 1, IsActive: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.DeleteTable(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.UpdateTable(ctx, Table{ID: id, Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update after delete = %v, want ErrNotFound", err)
	}
}

func TestParseShortcuts(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{`["sin cebolla","con todo"]`, []string{"sin cebolla", "con todo"}},
		{"sin cebolla, con todo", []string{"sin cebolla", "con todo"}},
		{"solo", []string{"solo"}},
		{`[" a ", ""]`, []string{"a"}},
	}
	for _, tc := range cases {
		if got := ParseShortcuts(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseShortcuts(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
