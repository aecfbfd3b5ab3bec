// Package ticket renders an order as plain text sized for a 58mm thermal
// printer.
package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/model"
)

// Width is the character width of the printable area.
const Width = 32

const topPaddingLines = 3

// Header and footer lines printed on every ticket.
var (
	headerLines = []string{
		"TAQUERIA EL PADRINO",
		"ESTILO CULIACAN",
		"Avenida La Marina 239 Jardines del Toreo",
		"6691513122",
		"Mazatlan Sinaloa",
		"ORDER TICKET",
	}
	footerLines = []string{
		"THANK YOU FOR YOUR PURCHASE!",
		"FULL BELLY, HAPPY HEART",
	}
)

// Build renders the ticket text for an order. printedAt stamps the ticket
// date; pass the zero time to use the order's creation time instead.
func Build(o *model.Order, printedAt time.Time) string {
	when := printedAt
	if when.IsZero() {
		when = o.CreatedAt
	}
	if when.IsZero() {
		when = time.Now()
	}

	lines := make([]string, topPaddingLines)
	for _, h := range headerLines {
		lines = append(lines, wrapCentered(h)...)
	}
	lines = append(lines, sep('-'))
	lines = append(lines, clip("Folio: "+o.ID))
	lines = append(lines, clip("Date: "+when.Format("02/01/2006 15:04")))
	lines = append(lines, wrap("Customer: "+orDefault(o.Name, "GENERAL PUBLIC"))...)
	lines = append(lines, clip("Table: "+orDefault(o.Table, "N/A")))
	lines = append(lines, clip("To go: "+yesNo(o.ToGo)))
	if o.IncludeAdditionalNotesInTicket {
		if notes := strings.TrimSpace(o.AdditionalNotes); notes != "" {
			lines = append(lines, wrap("Additional notes: "+notes)...)
		}
	}
	lines = append(lines, sep('-'))

	for i, d := range o.Dishes {
		name := d.DisplayName
		if name == "" {
			name = fmt.Sprintf("Dish %d", i+1)
		}
		lines = append(lines, wrap(fmt.Sprintf("[%d] %s", i+1, name))...)
		lines = append(lines, clip("  To go: "+yesNo(d.ToGo)))
		for _, p := range d.Products {
			pname := p.DisplayName
			if pname == "" {
				pname = p.Name
			}
			lines = append(lines, wrap(fmt.Sprintf("  %d x %s", p.Quantity, pname))...)
			lines = append(lines, clip(fmt.Sprintf("    %s each  %s", money(p.Price), money(p.Subtotal()))))
			if p.Notes != "" {
				lines = append(lines, wrap("    Note: "+p.Notes)...)
			}
		}
		lines = append(lines, clip("  Dish subtotal: "+money(d.TotalAmount)))
		lines = append(lines, sep('.'))
	}

	change := o.AmountPaid.Sub(o.TotalAmount)
	if change.IsNegative() {
		change = decimal.Zero
	}
	lines = append(lines, sep('-'))
	lines = append(lines, rightAlign("TOTAL: "+money(o.TotalAmount)))
	lines = append(lines, rightAlign("PAID: "+money(o.AmountPaid)))
	lines = append(lines, rightAlign("CHANGE: "+money(change)))
	lines = append(lines, sep('-'))
	for _, f := range footerLines {
		lines = append(lines, wrapCentered(f)...)
	}
	lines = append(lines, "\n\n\n")

	return strings.Join(lines, "\n")
}

// wrap word-wraps text to the printable width, breaking words longer than a
// full line. Empty input yields a single empty line.
func wrap(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var out []string
	cur := ""
	for _, w := range words {
		for len(w) > Width {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			out = append(out, w[:Width])
			w = w[Width:]
		}
		switch {
		case cur == "":
			cur = w
		case len(cur)+1+len(w) <= Width:
			cur += " " + w
		default:
			out = append(out, cur)
			cur = w
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func wrapCentered(text string) []string {
	chunks := wrap(text)
	for i, c := range chunks {
		chunks[i] = center(c)
	}
	return chunks
}

func center(s string) string {
	if len(s) >= Width {
		return s[:Width]
	}
	left := (Width - len(s)) / 2
	right := Width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func rightAlign(s string) string {
	if len(s) >= Width {
		return s[:Width]
	}
	return strings.Repeat(" ", Width-len(s)) + s
}

func clip(s string) string {
	if len(s) > Width {
		return s[:Width]
	}
	return s
}

func sep(ch byte) string {
	return strings.Repeat(string(ch), Width)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// money formats an amount as $1,234.50.
func money(v decimal.Decimal) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}

	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
