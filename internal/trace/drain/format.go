package drain

import (
	"fmt"
	"io"
	"strings"

	"github.com/arcbook/matchengine/internal/trace"
)

const noOrderID = "N/A"

// WriteHeader writes the trace log's header section: one line per traced
// function, in FuncID order, per spec §6.
func WriteHeader(w io.Writer) error {
	for _, fn := range trace.FuncTable {
		if _, err := fmt.Fprintf(w, "%s | %d | %s\n", fn.Name, fn.ID, fn.Description); err != nil {
			return err
		}
	}
	return nil
}

// formatLine renders one TraceEvent as a single trace log line, applying it
// to vb first so SNAPSHOT has up-to-date state to render. snapshotLevels is
// the configured per-side level count (spec §6 snapshot.levels).
func formatLine(e *trace.TraceEvent, vb *VirtualBook, snapshotLevels int) string {
	vb.Apply(e)

	ctxID := noOrderID
	if e.HasContext {
		ctxID = trace.OrderIDString(e.ContextOrderID)
	}
	indent := strings.Repeat("  ", e.Depth)

	var tag, payload string
	switch e.Type {
	case trace.EventOrderIn:
		tag = "ORDER_IN"
		payload = fmt.Sprintf("orderId=%s side=%s type=%s qty=%d price=%s",
			trace.OrderIDString(e.OrderID), sideName(e.Side), orderTypeName(e.OrderType), e.Quantity, priceField(e.HasPrice, e.PriceTicks))

	case trace.EventCall:
		tag = "CALL"
		payload = fmt.Sprintf("%d", e.Func)

	case trace.EventExecReport:
		tag = "EXEC_REPORT"
		payload = fmt.Sprintf("orderId=%s side=%s execType=%s orderSize=%d lastQty=%d cumQty=%d price=%s",
			trace.OrderIDString(e.OrderID), sideName(e.Side), execTypeName(e.ExecutionType), e.OrderSize, e.LastQuantity, e.CumulativeQuantity, priceField(e.HasPrice, e.PriceTicks))

	case trace.EventBookAdd:
		tag = "BOOK_ADD"
		payload = fmt.Sprintf("orderId=%s side=%s price=%s remainingQty=%d cumQty=%d",
			trace.OrderIDString(e.OrderID), sideName(e.Side), priceField(true, e.PriceTicks), e.RemainingQuantity, e.CumulativeQuantity)

	case trace.EventSnapshot:
		tag = "SNAPSHOT"
		payload = formatSnapshot(vb, snapshotLevels)
	}

	return fmt.Sprintf("%s | %s%s | %s\n", ctxID, indent, tag, payload)
}

func formatSnapshot(vb *VirtualBook, levels int) string {
	buy := vb.TopLevels(0, levels)
	sell := vb.TopLevels(1, levels)
	return fmt.Sprintf("Buy: %s  Sell: %s", formatLevels(buy), formatLevels(sell))
}

func formatLevels(levels []Level) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%s:%d(%d)", trace.FromTicks(l.PriceTicks).String(), l.Quantity, l.Count)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// priceField renders a price field per spec §6's `price=<p|empty>` grammar:
// an absent price (CANCEL reports, a MARKET order's ORDER_IN) is an empty
// string, not a placeholder character.
func priceField(hasPrice bool, ticks int64) string {
	if !hasPrice {
		return ""
	}
	return trace.FromTicks(ticks).String()
}

func sideName(side uint8) string {
	if side == 0 {
		return "BUY"
	}
	return "SELL"
}

func orderTypeName(t uint8) string {
	if t == 0 {
		return "LIMIT"
	}
	return "MARKET"
}

func execTypeName(t uint8) string {
	switch t {
	case 0:
		return "PARTIAL_FILL"
	case 1:
		return "FULL_FILL"
	default:
		return "CANCEL"
	}
}
