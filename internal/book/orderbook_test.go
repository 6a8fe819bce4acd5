package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcbook/matchengine/internal/domain"
)

func restingOrder(side domain.Side, price string, qty uint64, seq uint64) *domain.Order {
	return &domain.Order{
		ID:                domain.NewOrderID(),
		Side:              side,
		Type:              domain.Limit,
		Price:             decimal.RequireFromString(price),
		HasPrice:          true,
		Quantity:          qty,
		RemainingQuantity: qty,
		ArrivalSequence:   seq,
	}
}

func TestInsert_RejectsMarketAndZeroRemaining(t *testing.T) {
	b := New()
	mkt := restingOrder(domain.Buy, "100", 5, 1)
	mkt.Type = domain.Market
	assert.ErrorIs(t, b.Insert(mkt), ErrNotLimitOrder)

	exhausted := restingOrder(domain.Buy, "100", 5, 1)
	exhausted.RemainingQuantity = 0
	assert.ErrorIs(t, b.Insert(exhausted), ErrNotLimitOrder)
}

func TestBestBuySell_EmptyBook(t *testing.T) {
	b := New()
	assert.Nil(t, b.BestBuy())
	assert.Nil(t, b.BestSell())
	assert.True(t, b.IsEmpty(domain.Buy))
	assert.True(t, b.IsEmpty(domain.Sell))
}

func TestInsert_PriceOrdering(t *testing.T) {
	b := New()
	require.NoError(t, b.Insert(restingOrder(domain.Buy, "99", 10, 1)))
	require.NoError(t, b.Insert(restingOrder(domain.Buy, "101", 10, 2)))
	require.NoError(t, b.Insert(restingOrder(domain.Buy, "100", 10, 3)))

	assert.Equal(t, "101", b.BestBuy().Price.String())

	require.NoError(t, b.Insert(restingOrder(domain.Sell, "105", 10, 4)))
	require.NoError(t, b.Insert(restingOrder(domain.Sell, "103", 10, 5)))
	assert.Equal(t, "103", b.BestSell().Price.String())
}

func TestInsert_FIFOWithinLevel(t *testing.T) {
	b := New()
	first := restingOrder(domain.Buy, "100", 5, 1)
	second := restingOrder(domain.Buy, "100", 5, 2)
	require.NoError(t, b.Insert(first))
	require.NoError(t, b.Insert(second))

	assert.Same(t, first, b.BestBuy())
	b.Remove(first)
	assert.Same(t, second, b.BestBuy())
}

func TestRemove_PrunesEmptyLevel(t *testing.T) {
	b := New()
	o := restingOrder(domain.Sell, "100", 5, 1)
	require.NoError(t, b.Insert(o))
	b.Remove(o)
	assert.True(t, b.IsEmpty(domain.Sell))
	assert.Empty(t, b.Levels(domain.Sell))
}

func TestRemove_PanicsOnNonHead(t *testing.T) {
	b := New()
	first := restingOrder(domain.Buy, "100", 5, 1)
	second := restingOrder(domain.Buy, "100", 5, 2)
	require.NoError(t, b.Insert(first))
	require.NoError(t, b.Insert(second))

	assert.Panics(t, func() { b.Remove(second) })
}

func TestCrossed(t *testing.T) {
	b := New()
	require.NoError(t, b.Insert(restingOrder(domain.Buy, "100", 5, 1)))
	require.NoError(t, b.Insert(restingOrder(domain.Sell, "101", 5, 2)))
	assert.False(t, b.Crossed())
}

func TestLevels_BestToWorstOrdering(t *testing.T) {
	b := New()
	require.NoError(t, b.Insert(restingOrder(domain.Sell, "101", 5, 1)))
	require.NoError(t, b.Insert(restingOrder(domain.Sell, "100", 5, 2)))
	require.NoError(t, b.Insert(restingOrder(domain.Sell, "103", 5, 3)))

	levels := b.Levels(domain.Sell)
	require.Len(t, levels, 3)
	assert.Equal(t, "100", levels[0].Price.String())
	assert.Equal(t, "101", levels[1].Price.String())
	assert.Equal(t, "103", levels[2].Price.String())
}
