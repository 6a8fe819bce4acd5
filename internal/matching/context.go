// Package matching implements the continuous double-auction engine: order
// validation, price-time priority matching against internal/book, execution
// report generation, and the trace emission hooks of spec §4.6.
package matching

// Context carries the state a traced call needs to know about the order
// currently in flight: how deeply nested the current call is, and which
// top-level order it belongs to. It is a field owned by Engine — explicitly
// not a thread-local or package-level global (spec §9 flags exactly this
// design decision) — because the engine is already single-threaded per
// instrument and a plain struct field is simpler to reason about and test.
type Context struct {
	Depth          int
	CurrentOrderID string
	OrderCounter   uint64
}

// enter increments depth and returns a function that restores it, so call
// sites can write `defer ctx.enter()()` around a traced operation.
func (c *Context) enter() func() {
	c.Depth++
	return func() { c.Depth-- }
}
