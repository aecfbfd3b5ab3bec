package ticket

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/model"
)

func ticketOrder() *model.Order {
	o := model.NewOrder("O202406150001", time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC))
	o.Name = "Walk-in"
	o.Table = "Table 2"
	o.AmountPaid = decimal.NewFromInt(100)

	d := o.AddDish()
	d.AddProduct(model.NewProduct("taco_pastor", decimal.NewFromInt(30), nil, "no onion", false, "Taco al pastor"))
	d.AddProduct(model.NewProduct("taco_pastor", decimal.NewFromInt(30), nil, "", false, "Taco al pastor"))
	o.RecomputeTotal()
	return o
}

func TestBuildLinesFitPrinterWidth(t *testing.T) {
	text := Build(ticketOrder(), time.Time{})
	for i, line := range strings.Split(text, "\n") {
		if len(line) > Width {
			t.Errorf("line %d is %d chars, exceeds width %d: %q", i, len(line), Width, line)
		}
	}
}

func TestBuildContents(t *testing.T) {
	text := Build(ticketOrder(), time.Time{})

	for _, want := range []string{
		"TAQUERIA EL PADRINO",
		"Folio: O202406150001",
		"Date: 15/06/2024 13:45",
		"Customer: Walk-in",
		"Table: Table 2",
		"[1] Dish 1",
		"2 x Taco al pastor",
		"$30.00 each  $60.00",
		"Note: no onion",
		"TOTAL: $60.00",
		"PAID: $100.00",
		"CHANGE: $40.00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("ticket missing %q", want)
		}
	}
}

func TestBuildDefaults(t *testing.T) {
	o := model.NewOrder("O202406150002", time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	text := Build(o, time.Time{})

	if !strings.Contains(text, "Customer: GENERAL PUBLIC") {
		t.Errorf("missing customer fallback")
	}
	if !strings.Contains(text, "Table: N/A") {
		t.Errorf("missing table fallback")
	}
	if !strings.Contains(text, "CHANGE: $0.00") {
		t.Errorf("change should floor at zero, got:\n%s", text)
	}
}

func TestBuildPrintTimeOverridesCreation(t *testing.T) {
	o := ticketOrder()
	text := Build(o, time.Date(2024, 6, 16, 8, 30, 0, 0, time.UTC))

	if !strings.Contains(text, "Date: 16/06/2024 08:30") {
		t.Errorf("ticket does not use the print time")
	}
}

func TestBuildSkipsNotesUnlessIncluded(t *testing.T) {
	o := ticketOrder()
	o.AdditionalNotes = "birthday table"

	if text := Build(o, time.Time{}); strings.Contains(text, "birthday table") {
		t.Errorf("notes printed without the include flag")
	}

	o.IncludeAdditionalNotesInTicket = true
	if text := Build(o, time.Time{}); !strings.Contains(text, "Additional notes: birthday table") {
		t.Errorf("notes missing with the include flag set")
	}
}

func TestMoneyGrouping(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"30", "$30.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.89", "$1,234,567.89"},
	}
	for _, c := range cases {
		if got := money(decimal.RequireFromString(c.in)); got != c.want {
			t.Errorf("money(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}
