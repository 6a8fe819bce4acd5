// Package drain consumes the trace ring on its own goroutine and reconstructs
// a virtual order book purely from the events it reads, so SNAPSHOT lines
// can be produced cheaply off the matching hot path (spec §4.5).
package drain

import (
	"github.com/tidwall/btree"

	"github.com/arcbook/matchengine/internal/trace"
)

// virtualOrder is the drain-side record of one resting order, fed entirely
// by BOOK_ADD and EXEC_REPORT events — never by reading internal/book
// directly (spec §4.5: the drain must not touch engine-owned state).
type virtualOrder struct {
	side       uint8
	priceTicks int64
	remaining  uint64
}

// Level is one aggregated price level, as exposed to the snapshot formatter:
// total resting quantity and the number of orders contributing to it,
// mirroring the real book's per-level FIFO length (spec §4.5).
type Level struct {
	PriceTicks int64
	Quantity   uint64
	Count      int
}

// VirtualBook mirrors the real book's two price-ordered sides using only
// the quantity aggregate needed for SNAPSHOT rendering — it has no notion
// of FIFO order within a level, since the trace log never needs one.
type VirtualBook struct {
	orders map[string]*virtualOrder
	bids   *btree.BTreeG[*Level] // highest price first
	asks   *btree.BTreeG[*Level] // lowest price first
}

// NewVirtualBook constructs an empty reconstruction.
func NewVirtualBook() *VirtualBook {
	return &VirtualBook{
		orders: make(map[string]*virtualOrder),
		bids: btree.NewBTreeG(func(a, b *Level) bool {
			return a.PriceTicks > b.PriceTicks
		}),
		asks: btree.NewBTreeG(func(a, b *Level) bool {
			return a.PriceTicks < b.PriceTicks
		}),
	}
}

// buySide mirrors domain.Buy's wire value (0); drain never imports
// internal/domain, so the value is restated here against the TraceEvent
// payload encoding instead.
const buySide uint8 = 0

func (vb *VirtualBook) tree(side uint8) *btree.BTreeG[*Level] {
	if side == buySide {
		return vb.bids
	}
	return vb.asks
}

// addLevel adjusts a price level's aggregate quantity and order count,
// creating the level on first insert and pruning it once either its
// quantity or its order count reaches zero.
func (vb *VirtualBook) addLevel(side uint8, priceTicks int64, qtyDelta int64, countDelta int) {
	tree := vb.tree(side)
	key := &Level{PriceTicks: priceTicks}
	level, ok := tree.GetMut(key)
	if !ok {
		if qtyDelta <= 0 {
			return
		}
		tree.Set(&Level{PriceTicks: priceTicks, Quantity: uint64(qtyDelta), Count: countDelta})
		return
	}
	if qtyDelta < 0 && uint64(-qtyDelta) >= level.Quantity {
		tree.Delete(key)
		return
	}
	if qtyDelta < 0 {
		level.Quantity -= uint64(-qtyDelta)
	} else {
		level.Quantity += uint64(qtyDelta)
	}
	level.Count += countDelta
	if level.Count <= 0 || level.Quantity == 0 {
		tree.Delete(key)
	}
}

// Apply feeds one TraceEvent into the reconstruction. Only BOOK_ADD and
// EXEC_REPORT carry book-shape information; every other event type is a
// no-op here.
func (vb *VirtualBook) Apply(e *trace.TraceEvent) {
	switch e.Type {
	case trace.EventBookAdd:
		id := trace.OrderIDString(e.OrderID)
		vb.orders[id] = &virtualOrder{side: e.Side, priceTicks: e.PriceTicks, remaining: e.RemainingQuantity}
		vb.addLevel(e.Side, e.PriceTicks, int64(e.RemainingQuantity), 1)

	case trace.EventExecReport:
		id := trace.OrderIDString(e.OrderID)
		vo, ok := vb.orders[id]
		if !ok {
			// The incoming (taker) side of a fill is never in the virtual
			// book until it rests via a later BOOK_ADD, if at all.
			return
		}
		newRemaining := e.OrderSize - e.CumulativeQuantity
		qtyDelta := int64(newRemaining) - int64(vo.remaining)
		if newRemaining == 0 {
			vb.addLevel(vo.side, vo.priceTicks, qtyDelta, -1)
			delete(vb.orders, id)
			return
		}
		vb.addLevel(vo.side, vo.priceTicks, qtyDelta, 0)
		vo.remaining = newRemaining
	}
}

// TopLevels returns up to k price levels on side, best price first. k <= 0
// yields an empty slice, matching the zero-level-config boundary case.
func (vb *VirtualBook) TopLevels(side uint8, k int) []Level {
	if k <= 0 {
		return nil
	}
	var out []Level
	vb.tree(side).Scan(func(l *Level) bool {
		out = append(out, *l)
		return len(out) < k
	})
	return out
}
