// Package trace implements the lossy SPSC instrumentation pipeline: the
// pre-allocated TraceEvent slot shape and the ring buffer that carries
// events from the engine thread to the drain thread (spec §4.4).
package trace

// EventType tags a TraceEvent's shape, per spec §3.
type EventType uint8

const (
	EventCall EventType = iota
	EventOrderIn
	EventExecReport
	EventBookAdd
	EventSnapshot
)

// FuncID is a compile-time-resolved identifier for a traced operation,
// standing in for the original's bytecode-injected UUID constants (spec
// §9: "the uuid-per-site identifiers are static constants"). Small integers
// avoid retaining any string/interface reference in a ring slot (see
// DESIGN.md on slot reference lifetime).
type FuncID uint8

const (
	FuncSubmit FuncID = iota
	FuncMatchLoop
	FuncRestOrCancel
	FuncExecuteFill
	FuncInsert
)

// FuncInfo is one row of the trace log's header section (spec §6): name,
// a stable identifier, and a human description. ExecuteFill and Insert are
// listed for documentation even though they never emit a bare CALL event —
// they emit EXEC_REPORT/BOOK_ADD instead (spec §4.6).
type FuncInfo struct {
	Name        string
	ID          FuncID
	Description string
}

// FuncTable is the fixed set of traced operations, in FuncID order.
var FuncTable = [...]FuncInfo{
	FuncSubmit:       {"submit", FuncSubmit, "entry point for a single order submission"},
	FuncMatchLoop:    {"matchLoop", FuncMatchLoop, "walks the opposite side of the book generating fills"},
	FuncRestOrCancel: {"restOrCancel", FuncRestOrCancel, "rests residual LIMIT quantity or cancels residual MARKET quantity"},
	FuncExecuteFill:  {"executeFill", FuncExecuteFill, "applies a single fill to both sides and emits EXEC_REPORT (no CALL)"},
	FuncInsert:       {"insert", FuncInsert, "inserts a resting order into the book and emits BOOK_ADD (no CALL)"},
}

// noOrderID marks a TraceEvent with no associated order-in-flight context,
// formatted as "N/A" in the trace log (spec §6).
const noOrderID = ""

// TraceEvent is producer-filled and consumer-read. Every field is a value
// type (no pointers, strings held by copy only, decimals encoded as scaled
// integers) so that Release has no live reference to clear beyond zeroing
// the struct — see SPEC_FULL.md "Trace event payload encoding".
type TraceEvent struct {
	Type  EventType
	Depth int

	// ContextOrderID is the id of the top-level order currently being
	// processed, or noOrderID. Order ids are fixed 22-char base64url
	// strings; stored as a value, copied on claim, cleared on release.
	ContextOrderID [22]byte
	HasContext     bool

	Func FuncID // valid when Type == EventCall

	// Order/report/book fields, valid per Type per spec §3.
	OrderID            [22]byte
	Side               uint8
	OrderType          uint8
	ExecutionType      uint8
	HasPrice           bool
	PriceTicks         int64 // fixed-point, scale PriceScale
	Quantity           uint64
	OrderSize          uint64
	LastQuantity       uint64
	CumulativeQuantity uint64
	RemainingQuantity  uint64
}

// PriceScale is the fixed-point scale used to encode decimal.Decimal prices
// into TraceEvent.PriceTicks (10^8, i.e. 8 decimal digits of precision).
const PriceScale = 100_000_000

// clear zeroes a slot before it is handed back to the producer. With an
// all-scalar payload this has no references to release, but we still do it:
// it keeps the contract identical to an implementation that did store
// references, and it erases stale data from the previous occupant so a
// half-read slot can never be misread as valid.
func (e *TraceEvent) clear() {
	*e = TraceEvent{}
}

func orderIDBytes(id string) [22]byte {
	return OrderIDBytes(id)
}

// OrderIDBytes copies a 22-char order id string into its fixed-array
// payload encoding. Exported for the drain package, which decodes
// TraceEvent payloads read off the ring.
func OrderIDBytes(id string) [22]byte {
	var out [22]byte
	copy(out[:], id)
	return out
}

// OrderIDString decodes an order id previously encoded with OrderIDBytes.
func OrderIDString(b [22]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
