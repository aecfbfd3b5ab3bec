package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/enum"
)

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testOrder() *Order {
	return NewOrder("O202406150001", time.Date(2024, 6, 15, 12, 30, 0, 0, time.Local))
}

func TestNewOrderDefaults(t *testing.T) {
	o := testOrder()

	if o.Status != enum.OrderStatusNew {
		t.Errorf("status = %q, want %q", o.Status, enum.OrderStatusNew)
	}
	if o.ServiceDate != "2024-06-15" {
		t.Errorf("service date = %q, want 2024-06-15", o.ServiceDate)
	}
	if !o.TotalAmount.IsZero() {
		t.Errorf("total = %s, want 0", o.TotalAmount)
	}
	if o.SentStatus {
		t.Error("new order must not be sent")
	}
}

func TestAddDishSelectsAndRenumbers(t *testing.T) {
	o := testOrder()

	first := o.AddDish()
	second := o.AddDish()

	if o.ActiveDish != second {
		t.Error("last added dish should be active")
	}
	if first.DisplayName != "Dish 1" || second.DisplayName != "Dish 2" {
		t.Errorf("display names = %q, %q", first.DisplayName, second.DisplayName)
	}
	if first.ID == second.ID {
		t.Error("dish ids must be unique")
	}
}

func TestRemoveDishRenumbersAndRetotals(t *testing.T) {
	o := testOrder()
	d1 := o.AddDish()
	d2 := o.AddDish()
	d3 := o.AddDish()
	d1.AddProduct(NewProduct("Taco", money("30"), nil, "", false, ""))
	d2.AddProduct(NewProduct("Quesadilla", money("45"), nil, "", false, ""))
	d3.AddProduct(NewProduct("Agua", money("20"), nil, "", false, ""))
	o.RecomputeTotal()

	if !o.RemoveDish(d2.ID) {
		t.Fatal("remove should succeed")
	}
	if got := o.TotalAmount; !got.Equal(money("50")) {
		t.Errorf("total = %s, want 50", got)
	}
	if d1.DisplayName != "Dish 1" || d3.DisplayName != "Dish 2" {
		t.Errorf("renumbering failed: %q, %q", d1.DisplayName, d3.DisplayName)
	}
	if o.RemoveDish("no-such-dish") {
		t.Error("removing unknown dish should fail")
	}
}

// Order total must track the sum of dish totals through any sequence of
// dish and product mutations.
func TestTotalsStayConsistent(t *testing.T) {
	o := testOrder()
	d := o.AddDish()

	d.AddProduct(NewProduct("Taco", money("30"), nil, "", false, ""))
	d.AddProduct(NewProduct("Taco", money("30"), nil, "", false, ""))
	o.RecomputeTotal()

	if len(d.Products) != 1 {
		t.Fatalf("want one merged product, got %d", len(d.Products))
	}
	if d.Products[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", d.Products[0].Quantity)
	}
	if !d.TotalAmount.Equal(money("60")) {
		t.Errorf("dish total = %s, want 60", d.TotalAmount)
	}
	if !o.TotalAmount.Equal(money("60")) {
		t.Errorf("order total = %s, want 60", o.TotalAmount)
	}

	d.RemoveProduct("Taco")
	o.RecomputeTotal()
	if !o.TotalAmount.IsZero() {
		t.Errorf("order total after removal = %s, want 0", o.TotalAmount)
	}
}

func TestSendAllDishes(t *testing.T) {
	o := testOrder()
	d1 := o.AddDish()
	d2 := o.AddDish()

	o.SendAllDishes()

	if d1.Status != enum.DishStatusSent || d2.Status != enum.DishStatusSent {
		t.Error("all dishes should be sent")
	}
	if d1.SentCount != 1 || d2.SentCount != 1 {
		t.Errorf("sent counts = %d, %d, want 1, 1", d1.SentCount, d2.SentCount)
	}
	if !o.SentStatus {
		t.Error("order sent status should be true")
	}

	// Re-sending must not bump counters.
	o.SendAllDishes()
	if d1.SentCount != 1 {
		t.Errorf("sent count after resend = %d, want 1", d1.SentCount)
	}
}

func TestSentStatusWithoutDishes(t *testing.T) {
	o := testOrder()
	o.SendAllDishes()
	if o.SentStatus {
		t.Error("order with zero dishes is never sent")
	}
}

func TestSentStatusPartial(t *testing.T) {
	o := testOrder()
	d1 := o.AddDish()
	o.AddDish()

	d1.Send()
	o.RefreshSentStatus()
	if o.SentStatus {
		t.Error("one unsent dish must keep sent status false")
	}
}

func TestReopenKeepsDishState(t *testing.T) {
	o := testOrder()
	d := o.AddDish()
	d.Send()
	o.RefreshSentStatus()
	o.Close()

	o.Reopen()

	if o.Status != enum.OrderStatusNew {
		t.Errorf("status = %q, want New", o.Status)
	}
	if d.Status != enum.DishStatusSent || !o.SentStatus {
		t.Error("reopen must not touch dish statuses or sent status")
	}
}

func TestToGoPropagation(t *testing.T) {
	o := testOrder()
	d1 := o.AddDish()
	d2 := o.AddDish()
	d2.SetToGo(true, true) // individually overridden

	o.ToGo = true
	o.SyncDishesToGo()

	if !d1.ToGo {
		t.Error("non-overridden dish should follow the order flag")
	}
	if !d2.ToGo {
		t.Error("overridden dish keeps its own flag")
	}

	o.ToGo = false
	o.SyncDishesToGo()
	if d1.ToGo {
		t.Error("non-overridden dish should follow the order flag down")
	}
	if !d2.ToGo {
		t.Error("override must survive order-level sync")
	}

	o.ApplyToGoToAllDishes(false)
	if d2.ToGo || d2.ToGoOverridden {
		t.Error("apply-to-all forces the flag and clears overrides")
	}
}

func TestCloneIsDetached(t *testing.T) {
	o := testOrder()
	d1 := o.AddDish()
	o.AddDish()
	d1.AddProduct(NewProduct("Taco", money("30"), []string{"no onion"}, "", false, ""))
	o.SetActiveDish(d1.ID)
	o.RecomputeTotal()

	c := o.Clone()

	if c.ActiveDish == nil || c.ActiveDish.ID != d1.ID {
		t.Fatal("clone must map the active dish onto its own copy")
	}
	if c.ActiveDish == d1 {
		t.Fatal("clone must not share dish pointers with the original")
	}

	d1.SetProductQuantity("Taco", 5)
	o.RecomputeTotal()
	d1.Products[0].NotesShortcuts[0] = "extra salsa"

	if got := c.Dishes[0].Product("Taco").Quantity; got != 1 {
		t.Errorf("clone quantity = %d, want 1 (unaffected by later edits)", got)
	}
	if !c.TotalAmount.Equal(money("30")) {
		t.Errorf("clone total = %s, want 30", c.TotalAmount)
	}
	if got := c.Dishes[0].Product("Taco").NotesShortcuts[0]; got != "no onion" {
		t.Errorf("clone shortcuts = %q, want no onion", got)
	}
}

func TestSetActiveDish(t *testing.T) {
	o := testOrder()
	d1 := o.AddDish()
	o.AddDish()

	if got := o.SetActiveDish(d1.ID); got != d1 {
		t.Error("selection should return the selected dish")
	}
	if o.SetActiveDish("missing") != nil {
		t.Error("selecting an unknown dish must fail")
	}
	if o.ActiveDish != d1 {
		t.Error("failed selection must not change the active dish")
	}
}
