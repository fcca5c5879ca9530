// Package ident generates the human-readable document numbers used for bookings
// and invoices: <PREFIX>-<YYYYMMDD>-<4 digits>.
package ident

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

const (
	PrefixHotel      = "HTL"
	PrefixAuditorium = "AUD"
	PrefixInvoice    = "INV"
)

var pattern = regexp.MustCompile(`^[A-Z]{3}-\d{8}-\d{4}$`)

// Generator returns a new identifier for the prefix and creation instant.
type Generator func(prefix string, at time.Time) string

// Random draws the four-digit suffix uniformly. Collisions are possible: callers
// look the id up before use and draw again when the store rejects a duplicate.
func Random(prefix string, at time.Time) string {
	return Format(prefix, at, rand.IntN(10000))
}

func Format(prefix string, at time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, at.UTC().Format("20060102"), seq%10000)
}

// Valid reports whether id has the document number shape.
func Valid(id string) bool {
	return pattern.MatchString(id)
}
