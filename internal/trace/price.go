package trace

import "github.com/shopspring/decimal"

// ToTicks converts a decimal price into the fixed-point integer encoding
// used inside TraceEvent payloads (see SPEC_FULL.md "Trace event payload
// encoding"). Precision beyond PriceScale is truncated, which is acceptable
// here: ticks feed only the best-effort trace log, never the book or the
// execution reports, which keep decimal.Decimal throughout.
func ToTicks(d decimal.Decimal) int64 {
	return d.Shift(priceExponentMagnitude).IntPart()
}

// FromTicks reconstructs a decimal price from its fixed-point encoding, for
// formatting trace log lines on the drain side.
func FromTicks(ticks int64) decimal.Decimal {
	return decimal.New(ticks, -priceExponentMagnitude)
}

// priceExponentMagnitude is the number of decimal digits PriceScale encodes
// (PriceScale == 10^priceExponentMagnitude).
const priceExponentMagnitude = 8
