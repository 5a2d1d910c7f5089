package ledger

import (
	"math"
	"strconv"
)

// DefaultGSTPercent applies when an utterance names no tax rate.
const DefaultGSTPercent = 18.0

// Totals holds the derived money fields for a single-rate transaction line.
type Totals struct {
	Subtotal   float64
	TaxAmount  float64
	NetTotal   float64
	BalanceDue float64
}

// Compute derives all totals from the base figures. Values are carried as
// exact float64 and only rounded at the display boundary, so recomputing
// from the same inputs always yields identical totals.
func Compute(quantity, rate, gstPercent, paymentReceived float64) Totals {
	subtotal := quantity * rate
	tax := subtotal * gstPercent / 100
	net := subtotal + tax
	return Totals{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		NetTotal:   net,
		BalanceDue: net - paymentReceived,
	}
}

// Round2 rounds to two decimal places. Display only.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders a rupee amount with two decimals for response text.
func FormatAmount(v float64) string {
	return "₹" + strconv.FormatFloat(Round2(v), 'f', 2, 64)
}
