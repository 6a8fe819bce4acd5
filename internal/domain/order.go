package domain

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned when a submitted order's quantity is not
// strictly positive.
var ErrInvalidQuantity = errors.New("domain: quantity must be positive")

// ErrMissingLimitPrice is returned when a LIMIT order carries no price.
var ErrMissingLimitPrice = errors.New("domain: limit order requires a price")

// NewOrderID mints a fresh 128-bit order identifier, encoded URL-safe
// base64 without padding (22 chars), per the wire boundary in spec §3/§6.
func NewOrderID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Order is a single resting or transient order. Only MatchingEngine mutates
// Remaining/Cumulative after construction.
type Order struct {
	ID                 string
	Side               Side
	Type               OrderType
	Price              decimal.Decimal
	HasPrice           bool
	Quantity           uint64
	RemainingQuantity  uint64
	CumulativeQuantity uint64
	ArrivalSequence    uint64
}

// NewOrderParams is the caller-supplied shape for a submission; ID and
// ArrivalSequence are assigned by the engine, never by the caller.
type NewOrderParams struct {
	Side     Side
	Type     OrderType
	Price    decimal.Decimal
	HasPrice bool
	Quantity uint64
}

// Validate enforces spec §4.2 step 1: non-positive quantity or a LIMIT with
// no price are rejected before an Order is ever constructed. A MARKET order
// carrying a price is not rejected — the price is simply ignored, per §3.
func (p NewOrderParams) Validate() error {
	if p.Quantity == 0 {
		return ErrInvalidQuantity
	}
	if p.Type == Limit && !p.HasPrice {
		return ErrMissingLimitPrice
	}
	return nil
}

// newOrder constructs an Order from validated params, the minted ID, and the
// arrival sequence assigned by the engine at submission time.
func newOrder(id string, seq uint64, p NewOrderParams) *Order {
	o := &Order{
		ID:                id,
		Side:              p.Side,
		Type:              p.Type,
		Quantity:          p.Quantity,
		RemainingQuantity: p.Quantity,
		ArrivalSequence:   seq,
	}
	if p.Type == Limit {
		o.Price = p.Price
		o.HasPrice = true
	}
	return o
}

// NewOrder validates params and constructs an Order, minting a fresh ID and
// using the given arrival sequence. Exposed for callers (e.g. the engine)
// that own sequence assignment; most callers should go through
// matching.Engine.Submit instead.
func NewOrder(seq uint64, p NewOrderParams) (*Order, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return newOrder(NewOrderID(), seq, p), nil
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.RemainingQuantity == 0
}
