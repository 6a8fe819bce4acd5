package matching

import (
	"github.com/rs/zerolog/log"

	"github.com/arcbook/matchengine/internal/book"
	"github.com/arcbook/matchengine/internal/domain"
	"github.com/arcbook/matchengine/internal/trace"
)

// Config controls an Engine's ambient behavior: tracing and the snapshot
// cadence of spec §6.
type Config struct {
	// Emit enables trace emission entirely. When false, Engine never touches
	// the ring and Submit's cost is the matching loop alone.
	Emit bool
	// RingCapacity is the trace ring's slot count; 0 selects trace.DefaultCapacity.
	RingCapacity int
	// SnapshotInterval emits a SNAPSHOT event every N processed orders. 0
	// disables periodic snapshots.
	SnapshotInterval uint64
}

// Engine is a single-instrument, single-threaded continuous matching engine:
// price-time priority against an internal/book.OrderBook, with execution
// report generation and trace emission at the fixed sites of spec §4.6.
// Grounded on the teacher's internal/engine package structure (one engine
// instance owns its book and its own sequence counters, no package-level
// mutable state).
type Engine struct {
	book    *book.OrderBook
	emitter *trace.Emitter
	ctx     Context

	reportSeq        uint64
	arrivalSeq       uint64
	snapshotInterval uint64
}

// NewEngine constructs an Engine with a fresh, empty book and a ring sized
// per cfg.
func NewEngine(cfg Config) *Engine {
	ring := trace.NewRing(cfg.RingCapacity)
	return &Engine{
		book:             book.New(),
		emitter:          trace.NewEmitter(ring, cfg.Emit),
		snapshotInterval: cfg.SnapshotInterval,
	}
}

// Ring exposes the trace ring so a drain consumer can be attached to it.
func (e *Engine) Ring() *trace.Ring {
	return e.emitter.Ring()
}

func oppositeSide(s domain.Side) domain.Side {
	if s == domain.Buy {
		return domain.Sell
	}
	return domain.Buy
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func (e *Engine) nextReportSeq() uint64 {
	e.reportSeq++
	return e.reportSeq
}

// Submit validates params, runs the order through the match loop against
// the opposite side of the book, and rests or cancels whatever quantity
// remains (spec §4.2). Reports are returned in strict generation order,
// which is also their only valid export order (spec §4.3/§8).
func (e *Engine) Submit(params domain.NewOrderParams) ([]domain.ExecutionReport, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e.arrivalSeq++
	order, err := domain.NewOrder(e.arrivalSeq, params)
	if err != nil {
		return nil, err
	}

	e.ctx.Depth = 0
	e.ctx.CurrentOrderID = order.ID
	e.ctx.OrderCounter++

	var priceTicks int64
	if order.HasPrice {
		priceTicks = trace.ToTicks(order.Price)
	}
	e.emitter.OrderIn(e.ctx.CurrentOrderID, order.ID, uint8(order.Side), uint8(order.Type), order.Quantity, order.HasPrice, priceTicks)
	e.emitter.Call(e.ctx.Depth, e.ctx.CurrentOrderID, trace.FuncSubmit)

	reports := e.matchLoop(order)
	e.restOrCancel(order, &reports)

	if e.book.Crossed() {
		// matching drains any overlap before returning; a crossed book here
		// is a broken invariant the engine must not try to heal (spec §7).
		panic("matching: book is crossed after submit")
	}

	if e.snapshotInterval > 0 && e.ctx.OrderCounter%e.snapshotInterval == 0 {
		e.emitter.Snapshot(e.ctx.CurrentOrderID)
	}
	e.emitter.Publish()

	log.Debug().
		Str("order_id", order.ID).
		Str("side", order.Side.String()).
		Int("fills", len(reports)).
		Msg("order processed")

	return reports, nil
}

// matchLoop walks the opposite side of the book best-price-first, filling
// against resting orders until incoming is exhausted, the opposite side is
// empty, or (for a LIMIT order) the best opposite price no longer crosses
// incoming's limit price (spec §4.2 steps 2-3).
func (e *Engine) matchLoop(incoming *domain.Order) []domain.ExecutionReport {
	defer e.ctx.enter()()
	e.emitter.Call(e.ctx.Depth, e.ctx.CurrentOrderID, trace.FuncMatchLoop)

	opposite := oppositeSide(incoming.Side)
	var reports []domain.ExecutionReport

	for incoming.RemainingQuantity > 0 {
		resting := e.book.Best(opposite)
		if resting == nil {
			break
		}
		if incoming.Type == domain.Limit && !crosses(incoming, resting) {
			break
		}

		fillQty := minUint64(incoming.RemainingQuantity, resting.RemainingQuantity)
		r1, r2 := e.executeFill(incoming, resting, fillQty)
		reports = append(reports, r1, r2)

		if resting.IsFilled() {
			e.book.Remove(resting)
		}
	}

	return reports
}

// crosses reports whether incoming's limit price crosses resting's resting
// price: a buy crosses an ask priced at or below it, a sell crosses a bid
// priced at or above it.
func crosses(incoming, resting *domain.Order) bool {
	if incoming.Side == domain.Buy {
		return incoming.Price.GreaterThanOrEqual(resting.Price)
	}
	return incoming.Price.LessThanOrEqual(resting.Price)
}

// executeFill applies one fill of qty to both incoming and resting, atomic
// in the sense that both sides update together before either report is
// generated, and emits the pair of EXEC_REPORT trace events spec §4.6
// reserves for this site (no bare CALL is ever emitted here).
func (e *Engine) executeFill(incoming, resting *domain.Order, qty uint64) (domain.ExecutionReport, domain.ExecutionReport) {
	defer e.ctx.enter()()

	incoming.RemainingQuantity -= qty
	incoming.CumulativeQuantity += qty
	resting.RemainingQuantity -= qty
	resting.CumulativeQuantity += qty

	incomingReport := domain.ExecutionReport{
		Sequence:           e.nextReportSeq(),
		OrderID:            incoming.ID,
		Side:               incoming.Side,
		ExecutionType:      fillType(incoming),
		OrderSize:          incoming.Quantity,
		Price:              resting.Price,
		HasPrice:           true,
		LastQuantity:       qty,
		CumulativeQuantity: incoming.CumulativeQuantity,
	}
	restingReport := domain.ExecutionReport{
		Sequence:           e.nextReportSeq(),
		OrderID:            resting.ID,
		Side:               resting.Side,
		ExecutionType:      fillType(resting),
		OrderSize:          resting.Quantity,
		Price:              resting.Price,
		HasPrice:           true,
		LastQuantity:       qty,
		CumulativeQuantity: resting.CumulativeQuantity,
	}

	priceTicks := trace.ToTicks(resting.Price)
	e.emitter.ExecReport(e.ctx.Depth, e.ctx.CurrentOrderID, incomingReport.OrderID, uint8(incomingReport.Side), uint8(incomingReport.ExecutionType), incomingReport.OrderSize, incomingReport.LastQuantity, incomingReport.CumulativeQuantity, true, priceTicks)
	e.emitter.ExecReport(e.ctx.Depth, e.ctx.CurrentOrderID, restingReport.OrderID, uint8(restingReport.Side), uint8(restingReport.ExecutionType), restingReport.OrderSize, restingReport.LastQuantity, restingReport.CumulativeQuantity, true, priceTicks)

	return incomingReport, restingReport
}

func fillType(o *domain.Order) domain.ExecutionType {
	if o.IsFilled() {
		return domain.FullFill
	}
	return domain.PartialFill
}

// restOrCancel disposes of whatever quantity the match loop left on order: a
// LIMIT order rests in the book (insert emits BOOK_ADD), a MARKET order's
// residue is cancelled and reported (spec §4.2 step 4, §3 "unfilled MARKET
// quantity is cancelled, never rested").
func (e *Engine) restOrCancel(order *domain.Order, reports *[]domain.ExecutionReport) {
	defer e.ctx.enter()()
	e.emitter.Call(e.ctx.Depth, e.ctx.CurrentOrderID, trace.FuncRestOrCancel)

	if order.RemainingQuantity == 0 {
		return
	}

	if order.Type == domain.Limit {
		e.insert(order)
		return
	}

	report := domain.ExecutionReport{
		Sequence:           e.nextReportSeq(),
		OrderID:            order.ID,
		Side:               order.Side,
		ExecutionType:      domain.Cancel,
		OrderSize:          order.Quantity,
		LastQuantity:       order.RemainingQuantity,
		CumulativeQuantity: order.CumulativeQuantity,
	}
	*reports = append(*reports, report)
	e.emitter.ExecReport(e.ctx.Depth, e.ctx.CurrentOrderID, report.OrderID, uint8(report.Side), uint8(report.ExecutionType), report.OrderSize, report.LastQuantity, report.CumulativeQuantity, false, 0)
}

// insert rests order in the book and emits BOOK_ADD; like executeFill, this
// site never emits a bare CALL (spec §4.6).
func (e *Engine) insert(order *domain.Order) {
	defer e.ctx.enter()()

	if err := e.book.Insert(order); err != nil {
		// order is guaranteed Limit with RemainingQuantity > 0 by the caller;
		// reaching here means a book invariant broke upstream.
		panic(err)
	}

	e.emitter.BookAdd(e.ctx.Depth, e.ctx.CurrentOrderID, order.ID, uint8(order.Side), trace.ToTicks(order.Price), order.RemainingQuantity, order.CumulativeQuantity)
}

// Book exposes the underlying order book for tests.
func (e *Engine) Book() *book.OrderBook {
	return e.book
}
