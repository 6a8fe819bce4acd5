package trace

// Emitter is the producer-side façade the matching engine calls at the
// fixed emission points of spec §4.6. It gates every claim on whether
// tracing is enabled at all, so a disabled Emitter never touches the ring
// — matching spec §6's `emit: bool` configuration option exactly.
type Emitter struct {
	ring    *Ring
	enabled bool
}

// NewEmitter wraps ring with an enabled flag. A nil ring with enabled=false
// is valid; matching.NewEngine always passes a real ring, even when
// emission is disabled.
func NewEmitter(ring *Ring, enabled bool) *Emitter {
	return &Emitter{ring: ring, enabled: enabled}
}

// Enabled reports whether this emitter will ever claim a slot.
func (em *Emitter) Enabled() bool { return em != nil && em.enabled }

// Ring exposes the wrapped ring so a drain consumer can be attached to it,
// regardless of whether emission is currently enabled.
func (em *Emitter) Ring() *Ring { return em.ring }

// Publish flushes every slot claimed since the last Publish. Spec §4.6
// requires this to happen before control returns to the caller from any
// depth-0 emission site; Engine.Submit calls it exactly once, at return.
func (em *Emitter) Publish() {
	if !em.Enabled() {
		return
	}
	em.ring.Publish()
}

// OrderIn claims the ORDER_IN event fired at submit(order) entry, depth 0.
func (em *Emitter) OrderIn(ctxOrderID, orderID string, side, orderType uint8, qty uint64, hasPrice bool, priceTicks int64) {
	if !em.Enabled() {
		return
	}
	slot, ok := em.ring.Claim()
	if !ok {
		return
	}
	slot.Type = EventOrderIn
	slot.Depth = 0
	slot.ContextOrderID = orderIDBytes(ctxOrderID)
	slot.HasContext = ctxOrderID != noOrderID
	slot.OrderID = orderIDBytes(orderID)
	slot.Side = side
	slot.OrderType = orderType
	slot.Quantity = qty
	slot.HasPrice = hasPrice
	slot.PriceTicks = priceTicks
}

// Call claims a bare CALL event for a traced operation other than
// executeFill/insert (spec §4.6).
func (em *Emitter) Call(depth int, ctxOrderID string, fn FuncID) {
	if !em.Enabled() {
		return
	}
	slot, ok := em.ring.Claim()
	if !ok {
		return
	}
	slot.Type = EventCall
	slot.Depth = depth
	slot.ContextOrderID = orderIDBytes(ctxOrderID)
	slot.HasContext = ctxOrderID != noOrderID
	slot.Func = fn
}

// ExecReport claims one EXEC_REPORT event, emitted from inside executeFill
// immediately after quantities are updated and the report is appended to
// the engine's report list (spec §4.6), and from restOrCancel for the
// CANCEL report of a MARKET order's residual quantity.
func (em *Emitter) ExecReport(depth int, ctxOrderID, orderID string, side, execType uint8, orderSize, lastQty, cumQty uint64, hasPrice bool, priceTicks int64) {
	if !em.Enabled() {
		return
	}
	slot, ok := em.ring.Claim()
	if !ok {
		return
	}
	slot.Type = EventExecReport
	slot.Depth = depth
	slot.ContextOrderID = orderIDBytes(ctxOrderID)
	slot.HasContext = ctxOrderID != noOrderID
	slot.OrderID = orderIDBytes(orderID)
	slot.Side = side
	slot.ExecutionType = execType
	slot.OrderSize = orderSize
	slot.LastQuantity = lastQty
	slot.CumulativeQuantity = cumQty
	slot.HasPrice = hasPrice
	slot.PriceTicks = priceTicks
}

// BookAdd claims one BOOK_ADD event, emitted from inside the engine's insert
// right after the order is added to the book (spec §4.6).
func (em *Emitter) BookAdd(depth int, ctxOrderID, orderID string, side uint8, priceTicks int64, remainingQty, cumQty uint64) {
	if !em.Enabled() {
		return
	}
	slot, ok := em.ring.Claim()
	if !ok {
		return
	}
	slot.Type = EventBookAdd
	slot.Depth = depth
	slot.ContextOrderID = orderIDBytes(ctxOrderID)
	slot.HasContext = ctxOrderID != noOrderID
	slot.OrderID = orderIDBytes(orderID)
	slot.Side = side
	slot.HasPrice = true
	slot.PriceTicks = priceTicks
	slot.RemainingQuantity = remainingQty
	slot.CumulativeQuantity = cumQty
}

// Snapshot claims a bare SNAPSHOT event. It carries no payload — the drain
// reconstructs book state from its virtual book (spec §4.5).
func (em *Emitter) Snapshot(ctxOrderID string) {
	if !em.Enabled() {
		return
	}
	slot, ok := em.ring.Claim()
	if !ok {
		return
	}
	slot.Type = EventSnapshot
	slot.Depth = 0
	slot.ContextOrderID = orderIDBytes(ctxOrderID)
	slot.HasContext = ctxOrderID != noOrderID
}
