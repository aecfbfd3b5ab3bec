// Package ordernum issues human-readable order identifiers of the form
// O{YYYYMMDD}{NNNN}: an 8-digit date followed by a 4-digit zero-padded daily
// sequence. The generator is constructed once at startup and seeded from the
// store's historical-maximum id so sequence numbers are never reissued, even
// after the order that held one is deleted.
package ordernum

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var idPattern = regexp.MustCompile(`^O(\d{8})(\d{4})$`)

// Generator produces daily-sequenced order identifiers. It is not safe for
// concurrent use; the order service serializes access.
type Generator struct {
	lastDate string
	counter  int
	now      func() time.Time
}

// New creates a generator at its zero state using the given clock. A nil
// clock means time.Now.
func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Seed initializes the generator from a previously issued identifier. A
// malformed or empty id is ignored and the generator stays at its zero
// state; a fresh counter is safer than guessing.
func (g *Generator) Seed(lastIssuedID string) {
	m := idPattern.FindStringSubmatch(strings.TrimSpace(lastIssuedID))
	if m == nil {
		return
	}
	counter, err := strconv.Atoi(m[2])
	if err != nil {
		return
	}
	g.lastDate = m[1]
	g.counter = counter
}

// Next returns the next identifier. The counter resets to 1 on the first
// call of a new day and increments otherwise. Overflow past 9999 is
// deliberately unhandled pending a product decision; the suffix simply grows
// past four digits.
func (g *Generator) Next() string {
	today := g.now().Format("20060102")
	if g.lastDate != today {
		g.lastDate = today
		g.counter = 1
	} else {
		g.counter++
	}
	return fmt.Sprintf("O%s%04d", today, g.counter)
}

// Valid reports whether id is a well-formed order identifier.
func Valid(id string) bool {
	return idPattern.MatchString(strings.TrimSpace(id))
}

// Compare orders two well-formed identifiers: the date parts are compared
// numerically, then the sequence parts. Malformed input compares as equal.
func Compare(a, b string) int {
	ma := idPattern.FindStringSubmatch(strings.TrimSpace(a))
	mb := idPattern.FindStringSubmatch(strings.TrimSpace(b))
	if ma == nil || mb == nil {
		return 0
	}
	da, _ := strconv.Atoi(ma[1])
	db, _ := strconv.Atoi(mb[1])
	if da != db {
		return da - db
	}
	na, _ := strconv.Atoi(ma[2])
	nb, _ := strconv.Atoi(mb[2])
	return na - nb
}
