// Package book implements the central limit order book: two price-indexed,
// side-specific priority structures plus per-price FIFO queues, per
// spec §4.1.
package book

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"github.com/arcbook/matchengine/internal/domain"
)

// ErrNotLimitOrder is returned by Insert for anything but a resting LIMIT
// order with positive remaining quantity.
var ErrNotLimitOrder = errors.New("book: only resting LIMIT orders with remaining quantity may be inserted")

// PriceLevel is a FIFO queue of resting orders at a single price. Removal
// is only ever performed on the head (spec §4.1/§8); Orders is sliced from
// the front rather than compacted, keeping head-remove O(1) amortized.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders []*domain.Order
}

func (l *PriceLevel) head() *domain.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

func (l *PriceLevel) popHead() {
	l.Orders[0] = nil
	l.Orders = l.Orders[1:]
}

// OrderBook holds the resting LIMIT orders for a single instrument, one
// price-ordered tree per side. Grounded on the teacher's
// internal/engine/orderbook.go, which uses the same tidwall/btree shape;
// here the book no longer owns matching (that moved to
// internal/matching.Engine) so it exposes only the primitives spec §4.1
// names: insert, bestBuy/bestSell, remove, isEmpty.
type OrderBook struct {
	bids *btree.BTreeG[*PriceLevel] // sorted highest price first
	asks *btree.BTreeG[*PriceLevel] // sorted lowest price first
}

// New constructs an empty order book.
func New() *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})
	return &OrderBook{bids: bids, asks: asks}
}

func (b *OrderBook) tree(side domain.Side) *btree.BTreeG[*PriceLevel] {
	if side == domain.Buy {
		return b.bids
	}
	return b.asks
}

// Insert appends order to the FIFO queue at its price on its side, creating
// the level if absent. Precondition: order.RemainingQuantity > 0 and
// order.Type == domain.Limit.
func (b *OrderBook) Insert(order *domain.Order) error {
	if order.Type != domain.Limit || order.RemainingQuantity == 0 {
		return ErrNotLimitOrder
	}

	tree := b.tree(order.Side)
	key := &PriceLevel{Price: order.Price}
	level, ok := tree.GetMut(key)
	if !ok {
		level = &PriceLevel{Price: order.Price, Orders: []*domain.Order{order}}
		tree.Set(level)
		return nil
	}
	level.Orders = append(level.Orders, order)
	return nil
}

// Best returns the head order of the best non-empty price level on side, or
// nil if that side is empty.
func (b *OrderBook) Best(side domain.Side) *domain.Order {
	level, ok := b.tree(side).Min()
	if !ok {
		return nil
	}
	return level.head()
}

// BestBuy returns the highest-priced resting buy order, or nil.
func (b *OrderBook) BestBuy() *domain.Order { return b.Best(domain.Buy) }

// BestSell returns the lowest-priced resting sell order, or nil.
func (b *OrderBook) BestSell() *domain.Order { return b.Best(domain.Sell) }

// Remove removes order from the head of its price level's FIFO. It is only
// ever correct to call this with the current head of that level (spec §4.1,
// §8) — removing anything else is a programming error and panics, since it
// signals a broken invariant the engine must not attempt to heal (spec §7).
func (b *OrderBook) Remove(order *domain.Order) {
	tree := b.tree(order.Side)
	key := &PriceLevel{Price: order.Price}
	level, ok := tree.GetMut(key)
	if !ok || level.head() != order {
		panic(fmt.Sprintf("book: remove called on non-head order %s at price %s", order.ID, order.Price))
	}

	level.popHead()
	if len(level.Orders) == 0 {
		tree.Delete(key)
	}
}

// IsEmpty reports whether side has no resting orders.
func (b *OrderBook) IsEmpty(side domain.Side) bool {
	_, ok := b.tree(side).Min()
	return !ok
}

// Crossed reports whether the book is in an illegally crossed state: a
// resting best buy at or above the best sell. Used by tests and by the
// engine's invariant checks (spec §8); matching should always drain any
// overlap before returning from Submit.
func (b *OrderBook) Crossed() bool {
	buy := b.BestBuy()
	sell := b.BestSell()
	if buy == nil || sell == nil {
		return false
	}
	return buy.Price.GreaterThanOrEqual(sell.Price)
}

// Levels returns the resting price levels on side, best price first. Used
// by tests; never called from the matching fast path.
func (b *OrderBook) Levels(side domain.Side) []*PriceLevel {
	var out []*PriceLevel
	b.tree(side).Scan(func(l *PriceLevel) bool {
		out = append(out, l)
		return true
	})
	return out
}
