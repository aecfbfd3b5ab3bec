package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/enum"
	"github.com/padrino-pos/api/internal/store"
)

// Seeds the menu and tables reference data for a fresh install. Existing
// rows are left alone, running twice is safe.
func main() {
	dbPath := flag.String("db", "", "Path to the SQLite database")
	flag.Parse()

	if *dbPath == "" {
		*dbPath = os.Getenv("DATABASE_PATH")
	}
	if *dbPath == "" {
		*dbPath = "padrino.db"
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	if err := seedMenu(ctx, st); err != nil {
		log.Fatalf("seed menu: %v", err)
	}
	if err := seedTables(ctx, st); err != nil {
		log.Fatalf("seed tables: %v", err)
	}

	log.Println("Seed completed successfully")
}

func seedMenu(ctx context.Context, st *store.Store) error {
	existing, err := st.ListMenuItems(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Printf("Menu already has %d items, skipping", len(existing))
		return nil
	}

	items := []store.MenuItem{
		{Name: "Taco de pastor", Cost: decimal.NewFromInt(30), Shortcuts: []string{"sin cebolla", "con todo"}, Color: "#e74c3c", Shape: enum.ShapeRectangle, ProductType: enum.ProductTypeFood},
		{Name: "Taco de asada", Cost: decimal.NewFromInt(32), Shortcuts: []string{"sin cebolla", "con todo"}, Color: "#e67e22", Shape: enum.ShapeRectangle, ProductType: enum.ProductTypeFood},
		{Name: "Quesadilla", Cost: decimal.NewFromInt(45), Shortcuts: []string{"sin queso"}, Color: "#f1c40f", Shape: enum.ShapeRectangle, ProductType: enum.ProductTypeFood},
		{Name: "Vampiro", Cost: decimal.NewFromInt(50), Color: "#9b59b6", Shape: enum.ShapeRectangle, ProductType: enum.ProductTypeFood},
		{Name: "Agua de jamaica", Cost: decimal.NewFromInt(25), Color: "#3498db", Shape: enum.ShapeCircle, ProductType: enum.ProductTypeDrink},
		{Name: "Agua de horchata", Cost: decimal.NewFromInt(25), Color: "#95a5a6", Shape: enum.ShapeCircle, ProductType: enum.ProductTypeDrink},
		{Name: "Refresco", Cost: decimal.NewFromInt(30), Color: "#2ecc71", Shape: enum.ShapeCircle, ProductType: enum.ProductTypeDrink},
	}
	for i, item := range items {
		item.Position = i
		item.IsActive = true
		if _, err := st.CreateMenuItem(ctx, item); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d menu items", len(items))
	return nil
}

func seedTables(ctx context.Context, st *store.Store) error {
	existing, err := st.ListTables(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Printf("Tables already seeded (%d), skipping", len(existing))
		return nil
	}

	names := []string{"Table 1", "Table 2", "Table 3", "Table 4", "Barra", "Terraza"}
	for i, name := range names {
		if _, err := st.CreateTable(ctx, store.Table{Name: name, Position: i, IsActive: true}); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d tables", len(names))
	return nil
}
