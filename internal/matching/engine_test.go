package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcbook/matchengine/internal/domain"
)

func limitParams(side domain.Side, price string, qty uint64) domain.NewOrderParams {
	return domain.NewOrderParams{
		Side:     side,
		Type:     domain.Limit,
		Price:    decimal.RequireFromString(price),
		HasPrice: true,
		Quantity: qty,
	}
}

func marketParams(side domain.Side, qty uint64) domain.NewOrderParams {
	return domain.NewOrderParams{Side: side, Type: domain.Market, Quantity: qty}
}

// S1: a marketable LIMIT buy fully fills a single resting sell of equal size.
func TestSubmit_SimpleFullFill(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Submit(limitParams(domain.Sell, "10.00", 100))
	require.NoError(t, err)

	reports, err := e.Submit(limitParams(domain.Buy, "10.00", 100))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, domain.FullFill, reports[0].ExecutionType)
	assert.Equal(t, domain.Buy, reports[0].Side)
	assert.Equal(t, domain.FullFill, reports[1].ExecutionType)
	assert.Equal(t, domain.Sell, reports[1].Side)
	assert.True(t, e.Book().IsEmpty(domain.Sell))
	assert.True(t, e.Book().IsEmpty(domain.Buy))
}

// S2: a LIMIT order partially fills against a smaller resting order, then
// rests the remainder at its own price.
func TestSubmit_PartialFillThenRest(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Submit(limitParams(domain.Sell, "10.00", 40))
	require.NoError(t, err)

	reports, err := e.Submit(limitParams(domain.Buy, "10.00", 100))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, domain.PartialFill, reports[0].ExecutionType)
	assert.Equal(t, uint64(40), reports[0].LastQuantity)
	assert.Equal(t, domain.FullFill, reports[1].ExecutionType)

	resting := e.Book().BestBuy()
	require.NotNil(t, resting)
	assert.Equal(t, uint64(60), resting.RemainingQuantity)
	assert.Equal(t, uint64(40), resting.CumulativeQuantity)
}

// S3: a MARKET order walks multiple price levels on the opposite side.
func TestSubmit_MarketWalksMultipleLevels(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Submit(limitParams(domain.Sell, "10.00", 30))
	require.NoError(t, err)
	_, err = e.Submit(limitParams(domain.Sell, "11.00", 30))
	require.NoError(t, err)

	reports, err := e.Submit(marketParams(domain.Buy, 50))
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.True(t, reports[1].Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, domain.FullFill, reports[1].ExecutionType)
	assert.True(t, reports[3].Price.Equal(decimal.RequireFromString("11.00")))
	assert.Equal(t, domain.PartialFill, reports[3].ExecutionType)

	remaining := e.Book().BestSell()
	require.NotNil(t, remaining)
	assert.Equal(t, uint64(10), remaining.RemainingQuantity)
}

// S4: a MARKET order larger than all resting liquidity cancels its residue
// instead of resting it.
func TestSubmit_MarketInsufficientLiquidityCancelsResidue(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Submit(limitParams(domain.Sell, "10.00", 20))
	require.NoError(t, err)

	reports, err := e.Submit(marketParams(domain.Buy, 50))
	require.NoError(t, err)
	require.Len(t, reports, 3)

	last := reports[len(reports)-1]
	assert.Equal(t, domain.Cancel, last.ExecutionType)
	assert.False(t, last.HasPrice)
	assert.Equal(t, uint64(30), last.LastQuantity, "CANCEL reports the residual unfilled quantity, not zero")
	assert.Equal(t, uint64(20), last.CumulativeQuantity)
	assert.True(t, e.Book().IsEmpty(domain.Sell))
}

// S5: a LIMIT order halts at its limit price, leaving the rest of the book
// untouched and resting its own residual quantity.
func TestSubmit_LimitHaltsAtItsPrice(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Submit(limitParams(domain.Sell, "10.00", 20))
	require.NoError(t, err)
	_, err = e.Submit(limitParams(domain.Sell, "11.00", 20))
	require.NoError(t, err)

	reports, err := e.Submit(limitParams(domain.Buy, "10.00", 50))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	levels := e.Book().Levels(domain.Sell)
	require.Len(t, levels, 1)
	assert.True(t, levels[0].Price.Equal(decimal.RequireFromString("11.00")))

	resting := e.Book().BestBuy()
	require.NotNil(t, resting)
	assert.Equal(t, uint64(30), resting.RemainingQuantity)
}

// S6: two resting orders at the same price fill in strict arrival (FIFO)
// order.
func TestSubmit_FIFOTieBreakAtSameLevel(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Submit(limitParams(domain.Sell, "10.00", 10))
	require.NoError(t, err)
	_, err = e.Submit(limitParams(domain.Sell, "10.00", 10))
	require.NoError(t, err)

	levels := e.Book().Levels(domain.Sell)
	require.Len(t, levels, 1)
	require.Len(t, levels[0].Orders, 2)
	firstRestingID := levels[0].Orders[0].ID
	secondRestingID := levels[0].Orders[1].ID

	reports, err := e.Submit(limitParams(domain.Buy, "10.00", 10))
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, firstRestingID, reports[1].OrderID)

	remaining := e.Book().BestSell()
	require.NotNil(t, remaining)
	assert.Equal(t, secondRestingID, remaining.ID)
}

func TestSubmit_RejectsInvalidParams(t *testing.T) {
	e := NewEngine(Config{})
	_, err := e.Submit(domain.NewOrderParams{Side: domain.Buy, Type: domain.Limit, Quantity: 10})
	assert.ErrorIs(t, err, domain.ErrMissingLimitPrice)

	_, err = e.Submit(domain.NewOrderParams{Side: domain.Buy, Type: domain.Market, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSubmit_QuantityInvariantHoldsAcrossFills(t *testing.T) {
	e := NewEngine(Config{})
	_, err := e.Submit(limitParams(domain.Sell, "10.00", 40))
	require.NoError(t, err)

	_, err = e.Submit(limitParams(domain.Buy, "10.00", 100))
	require.NoError(t, err)

	resting := e.Book().BestBuy()
	require.NotNil(t, resting)
	assert.Equal(t, resting.Quantity, resting.RemainingQuantity+resting.CumulativeQuantity)
}

func TestSubmit_BookNeverEndsCrossed(t *testing.T) {
	e := NewEngine(Config{})
	_, err := e.Submit(limitParams(domain.Sell, "10.00", 100))
	require.NoError(t, err)
	_, err = e.Submit(limitParams(domain.Buy, "10.50", 40))
	require.NoError(t, err)
	assert.False(t, e.Book().Crossed())
}

func TestSubmit_ReportSequenceIsMonotonic(t *testing.T) {
	e := NewEngine(Config{})
	_, err := e.Submit(limitParams(domain.Sell, "10.00", 100))
	require.NoError(t, err)
	reports, err := e.Submit(limitParams(domain.Buy, "10.00", 100))
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Less(t, reports[0].Sequence, reports[1].Sequence)
}
