package book

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matchengine/internal/domain"
)

func newOrder(clOrdID, symbol string, qty uint32, price float64, side domain.Side) domain.OrderSingle {
	return domain.OrderSingle{
		ClOrdID:   clOrdID,
		Symbol:    symbol,
		Qty:       qty,
		Price:     price,
		Side:      side,
		OrderType: domain.Limit,
	}
}

func TestAdd_AppendsToQueueTail(t *testing.T) {
	ob := New()

	assert.NoError(t, ob.Add(newOrder("A", "IBM", 100, 601.1, domain.Buy)))
	assert.NoError(t, ob.Add(newOrder("B", "IBM", 50, 601.1, domain.Buy)))

	queue := ob.OrdersFor(domain.Buy)[domain.OrderBookKey{Price: 601.1, Symbol: "IBM"}]
	assert.Equal(t, []string{"A", "B"}, []string{queue[0].ClOrdID, queue[1].ClOrdID})
}

// S6 — invalid insertion: qty=0 leaves the book unchanged and returns
// no error to the core (book.Add itself does return an error, since
// it is the programmatic entry point per spec §7; the text-format
// loader is the path that silently skips).
func TestAdd_RejectsInvalidOrder(t *testing.T) {
	ob := New()

	err := ob.Add(newOrder("A", "IBM", 0, 601.1, domain.Buy))
	assert.ErrorIs(t, err, ErrInvalidOrder)
	assert.True(t, ob.IsEmpty())
}

func TestOrderedKeys_BidsDescendingAsksAscending(t *testing.T) {
	ob := New()
	assert.NoError(t, ob.Add(newOrder("b1", "IBM", 10, 99.0, domain.Buy)))
	assert.NoError(t, ob.Add(newOrder("b2", "IBM", 10, 101.0, domain.Buy)))
	assert.NoError(t, ob.Add(newOrder("b3", "IBM", 10, 100.0, domain.Buy)))
	assert.NoError(t, ob.Add(newOrder("s1", "IBM", 10, 102.0, domain.Sell)))
	assert.NoError(t, ob.Add(newOrder("s2", "IBM", 10, 100.5, domain.Sell)))

	bidPrices := make([]float64, 0)
	for _, k := range ob.OrderedKeys(domain.Buy) {
		bidPrices = append(bidPrices, k.Price)
	}
	assert.Equal(t, []float64{101.0, 100.0, 99.0}, bidPrices)

	askPrices := make([]float64, 0)
	for _, k := range ob.OrderedKeys(domain.Sell) {
		askPrices = append(askPrices, k.Price)
	}
	assert.Equal(t, []float64{100.5, 102.0}, askPrices)
}

func TestUpdateSide_DropsEmptyQueues(t *testing.T) {
	ob := New()
	assert.NoError(t, ob.Add(newOrder("A", "IBM", 100, 601.1, domain.Buy)))

	ob.UpdateSide(domain.Buy, map[domain.OrderBookKey][]domain.OrderSingle{
		{Price: 601.1, Symbol: "IBM"}: {},
	})
	assert.True(t, ob.IsEmpty())
}

func TestMarketDepth_AggregatesPerPrice(t *testing.T) {
	ob := New()
	assert.NoError(t, ob.Add(newOrder("b1", "IBM", 100, 99.0, domain.Buy)))
	assert.NoError(t, ob.Add(newOrder("b2", "IBM", 50, 99.0, domain.Buy)))
	assert.NoError(t, ob.Add(newOrder("s1", "IBM", 30, 100.0, domain.Sell)))

	bids, offers := ob.MarketDepth("IBM")
	assert.Equal(t, []DepthLevel{{Price: 99.0, Qty: 150}}, bids)
	assert.Equal(t, []DepthLevel{{Price: 100.0, Qty: 30}}, offers)
}
