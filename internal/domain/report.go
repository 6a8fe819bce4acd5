package domain

import "github.com/shopspring/decimal"

// ExecutionReport is an immutable record of a fill or a market-order
// cancellation. Reports are ordered by Sequence, which reflects generation
// order (spec §4.3) and is assigned by the engine, never recomputed.
type ExecutionReport struct {
	Sequence           uint64
	OrderID            string
	Side               Side
	ExecutionType      ExecutionType
	OrderSize          uint64
	Price              decimal.Decimal
	HasPrice           bool
	LastQuantity       uint64
	CumulativeQuantity uint64
}
