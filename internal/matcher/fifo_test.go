package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matchengine/internal/book"
	"matchengine/internal/domain"
)

func buildBook(t *testing.T, orders ...domain.OrderSingle) *book.OrderBook {
	t.Helper()
	ob := book.New()
	for _, o := range orders {
		assert.NoError(t, ob.Add(o))
	}
	return ob
}

func order(clOrdID, symbol string, qty uint32, price float64, side domain.Side) domain.OrderSingle {
	return domain.OrderSingle{ClOrdID: clOrdID, Symbol: symbol, Qty: qty, Price: price, Side: side, OrderType: domain.Limit}
}

func fillFor(fills []domain.Fill, clOrdID string) domain.Fill {
	for _, f := range fills {
		if f.ClOrdID == clOrdID {
			return f
		}
	}
	return domain.Fill{}
}

// S1 — FIFO, one-to-one exact match.
func TestFIFO_ExactMatch(t *testing.T) {
	ob := buildBook(t,
		order("A", "IBM", 100, 601.1, domain.Buy),
		order("B", "IBM", 100, 601.1, domain.Sell),
	)

	fills := (&FIFOMatcher{}).Match(ob)
	assert.Len(t, fills, 2)

	a, b := fillFor(fills, "A"), fillFor(fills, "B")
	assert.Equal(t, uint32(100), a.Qty)
	assert.Equal(t, uint32(100), a.CumQty)
	assert.Equal(t, uint32(0), a.LeavesQty)
	assert.True(t, a.Status.Equal(domain.Filled))
	assert.Equal(t, "B", a.SecondaryClOrdID)

	assert.Equal(t, uint32(100), b.Qty)
	assert.Equal(t, uint32(100), b.CumQty)
	assert.Equal(t, uint32(0), b.LeavesQty)
	assert.True(t, b.Status.Equal(domain.Filled))
	assert.Equal(t, "A", b.SecondaryClOrdID)

	assert.True(t, ob.IsEmpty())
}

// S2 — FIFO, buy larger than sell.
func TestFIFO_BuyLargerThanSell(t *testing.T) {
	ob := buildBook(t,
		order("A", "IBM", 150, 601.1, domain.Buy),
		order("B", "IBM", 100, 601.1, domain.Sell),
	)

	fills := (&FIFOMatcher{}).Match(ob)
	a, b := fillFor(fills, "A"), fillFor(fills, "B")

	assert.Equal(t, uint32(100), a.Qty)
	assert.Equal(t, uint32(100), a.CumQty)
	assert.Equal(t, uint32(50), a.LeavesQty)
	assert.True(t, a.Status.Equal(domain.PartialFill))

	assert.Equal(t, uint32(100), b.Qty)
	assert.Equal(t, uint32(100), b.CumQty)
	assert.Equal(t, uint32(0), b.LeavesQty)
	assert.True(t, b.Status.Equal(domain.Filled))

	buys := ob.OrdersFor(domain.Buy)[domain.OrderBookKey{Price: 601.1, Symbol: "IBM"}]
	assert.Len(t, buys, 1)
	assert.Equal(t, uint32(50), buys[0].Qty)

	_, hasSell := ob.OrdersFor(domain.Sell)[domain.OrderBookKey{Price: 601.1, Symbol: "IBM"}]
	assert.False(t, hasSell)
}

// S3 — FIFO, buy smaller than sell.
func TestFIFO_BuySmallerThanSell(t *testing.T) {
	ob := buildBook(t,
		order("A", "IBM", 50, 601.1, domain.Buy),
		order("B", "IBM", 100, 601.1, domain.Sell),
	)

	fills := (&FIFOMatcher{}).Match(ob)
	a, b := fillFor(fills, "A"), fillFor(fills, "B")

	assert.Equal(t, uint32(50), a.Qty)
	assert.True(t, a.Status.Equal(domain.Filled))

	assert.Equal(t, uint32(50), b.Qty)
	assert.Equal(t, uint32(50), b.LeavesQty)
	assert.True(t, b.Status.Equal(domain.PartialFill))

	_, hasBuy := ob.OrdersFor(domain.Buy)[domain.OrderBookKey{Price: 601.1, Symbol: "IBM"}]
	assert.False(t, hasBuy)

	sells := ob.OrdersFor(domain.Sell)[domain.OrderBookKey{Price: 601.1, Symbol: "IBM"}]
	assert.Len(t, sells, 1)
	assert.Equal(t, uint32(50), sells[0].Qty)
}

// S5 — no crossing price: zero fills, book unchanged.
func TestFIFO_NoCrossingPrice(t *testing.T) {
	ob := buildBook(t,
		order("A", "IBM", 100, 600.0, domain.Buy),
		order("B", "IBM", 100, 601.0, domain.Sell),
	)

	fills := (&FIFOMatcher{}).Match(ob)
	assert.Empty(t, fills)

	buys := ob.OrdersFor(domain.Buy)
	sells := ob.OrdersFor(domain.Sell)
	assert.Len(t, buys, 1)
	assert.Len(t, sells, 1)
}

// Invariant 7 — idempotence of an empty match.
func TestFIFO_EmptyBookIsIdempotent(t *testing.T) {
	ob := book.New()
	assert.Empty(t, (&FIFOMatcher{}).Match(ob))
	assert.Empty(t, (&FIFOMatcher{}).Match(ob))
	assert.True(t, ob.IsEmpty())
}

// Invariants 1, 3, 4, 6: conservation, leaves arithmetic, status
// correctness, cross-reference symmetry, across a multi-order queue.
func TestFIFO_MultiOrderQueue_InvariantsHold(t *testing.T) {
	originalQty := map[string]uint32{"buy1": 60, "sell1": 40, "sell2": 40}
	ob := buildBook(t,
		order("buy1", "IBM", originalQty["buy1"], 50.0, domain.Buy),
		order("sell1", "IBM", originalQty["sell1"], 50.0, domain.Sell),
		order("sell2", "IBM", originalQty["sell2"], 50.0, domain.Sell),
	)

	fills := (&FIFOMatcher{}).Match(ob)
	assert.NotEmpty(t, fills)

	var clientTotal, exchangeTotal uint32
	for _, f := range fills {
		assert.Equal(t, originalQty[f.ClOrdID], f.CumQty+f.LeavesQty)
		assert.Equal(t, f.Status.Equal(domain.Filled), f.LeavesQty == 0)
		if f.Side == domain.Buy {
			clientTotal += f.Qty
		} else {
			exchangeTotal += f.Qty
		}
	}
	assert.Equal(t, clientTotal, exchangeTotal)

	for _, f := range fills {
		if f.ClOrdID != "buy1" {
			continue
		}
		counterpart := fillFor(fills, f.SecondaryClOrdID)
		assert.Equal(t, f.Qty, counterpart.Qty)
		assert.Equal(t, f.ClOrdID, counterpart.SecondaryClOrdID)
	}
}
