package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matchengine/internal/book"
	"matchengine/internal/domain"
)

// S4 — Pro-Rata, 3:1 split. Buys id8 (300) and id7 (100) share a
// price level against sells id9 (300) and id10 (100), all at 602.5.
// Hand-traced expected allocation: id9's round splits 225/75 between
// id8/id7 (3:1 of 300); id10's round then splits the residual 75/25
// (still 3:1, since the rotation re-appends reduced quantities at
// the same 3:1 ratio here). All eight fills (four client, four
// exchange) are emitted, and the level clears completely.
func TestProRata_ThreeToOneSplit(t *testing.T) {
	ob := book.New()
	assert.NoError(t, ob.Add(order("id8", "IBM", 300, 602.5, domain.Buy)))
	assert.NoError(t, ob.Add(order("id7", "IBM", 100, 602.5, domain.Buy)))
	assert.NoError(t, ob.Add(order("id9", "IBM", 300, 602.5, domain.Sell)))
	assert.NoError(t, ob.Add(order("id10", "IBM", 100, 602.5, domain.Sell)))

	fills := (&ProRataMatcher{}).Match(ob)
	assert.Len(t, fills, 8)

	byCounterparty := func(clOrdID, secondary string) domain.Fill {
		for _, f := range fills {
			if f.ClOrdID == clOrdID && f.SecondaryClOrdID == secondary {
				return f
			}
		}
		t.Fatalf("no fill found for %s vs %s", clOrdID, secondary)
		return domain.Fill{}
	}

	id8vs9 := byCounterparty("id8", "id9")
	assert.Equal(t, uint32(225), id8vs9.Qty)
	assert.Equal(t, uint32(225), id8vs9.CumQty)
	assert.Equal(t, uint32(75), id8vs9.LeavesQty)
	assert.True(t, id8vs9.Status.Equal(domain.PartialFill))

	id9vs8 := byCounterparty("id9", "id8")
	assert.Equal(t, uint32(225), id9vs8.Qty)
	assert.Equal(t, uint32(225), id9vs8.CumQty)
	assert.Equal(t, uint32(75), id9vs8.LeavesQty)
	assert.True(t, id9vs8.Status.Equal(domain.PartialFill))

	id7vs9 := byCounterparty("id7", "id9")
	assert.Equal(t, uint32(75), id7vs9.Qty)
	assert.Equal(t, uint32(75), id7vs9.CumQty)
	assert.Equal(t, uint32(25), id7vs9.LeavesQty)
	assert.True(t, id7vs9.Status.Equal(domain.PartialFill))

	id9vs7 := byCounterparty("id9", "id7")
	assert.Equal(t, uint32(75), id9vs7.Qty)
	assert.Equal(t, uint32(300), id9vs7.CumQty)
	assert.Equal(t, uint32(0), id9vs7.LeavesQty)
	assert.True(t, id9vs7.Status.Equal(domain.Filled))

	id8vs10 := byCounterparty("id8", "id10")
	assert.Equal(t, uint32(75), id8vs10.Qty)
	assert.Equal(t, uint32(300), id8vs10.CumQty)
	assert.Equal(t, uint32(0), id8vs10.LeavesQty)
	assert.True(t, id8vs10.Status.Equal(domain.Filled))

	id10vs8 := byCounterparty("id10", "id8")
	assert.Equal(t, uint32(75), id10vs8.Qty)
	assert.Equal(t, uint32(75), id10vs8.CumQty)
	assert.Equal(t, uint32(25), id10vs8.LeavesQty)
	assert.True(t, id10vs8.Status.Equal(domain.PartialFill))

	id7vs10 := byCounterparty("id7", "id10")
	assert.Equal(t, uint32(25), id7vs10.Qty)
	assert.Equal(t, uint32(100), id7vs10.CumQty)
	assert.Equal(t, uint32(0), id7vs10.LeavesQty)
	assert.True(t, id7vs10.Status.Equal(domain.Filled))

	id10vs7 := byCounterparty("id10", "id7")
	assert.Equal(t, uint32(25), id10vs7.Qty)
	assert.Equal(t, uint32(100), id10vs7.CumQty)
	assert.Equal(t, uint32(0), id10vs7.LeavesQty)
	assert.True(t, id10vs7.Status.Equal(domain.Filled))

	assert.True(t, ob.IsEmpty())
}

// Proportionality invariant: within a single round, the sum of fills
// allocated against one sell order never exceeds that sell order's
// quantity -- floor-rounding can only under-allocate, never over.
func TestProRata_RoundNeverOverAllocatesSellQty(t *testing.T) {
	ob := book.New()
	assert.NoError(t, ob.Add(order("b1", "IBM", 10, 100.0, domain.Buy)))
	assert.NoError(t, ob.Add(order("b2", "IBM", 10, 100.0, domain.Buy)))
	assert.NoError(t, ob.Add(order("b3", "IBM", 10, 100.0, domain.Buy)))
	assert.NoError(t, ob.Add(order("s1", "IBM", 10, 100.0, domain.Sell)))

	fills := (&ProRataMatcher{}).Match(ob)

	var exchangeTotal uint32
	for _, f := range fills {
		if f.Side == domain.Sell {
			exchangeTotal += f.Qty
		}
	}
	assert.LessOrEqual(t, exchangeTotal, uint32(10))
}

// A buy-only or sell-only price level never produces a fill: Match
// only touches keys present on both sides.
func TestProRata_OneSidedLevelProducesNoFills(t *testing.T) {
	ob := book.New()
	assert.NoError(t, ob.Add(order("b1", "IBM", 100, 602.5, domain.Buy)))

	fills := (&ProRataMatcher{}).Match(ob)
	assert.Empty(t, fills)

	buys := ob.OrdersFor(domain.Buy)[domain.OrderBookKey{Price: 602.5, Symbol: "IBM"}]
	assert.Len(t, buys, 1)
}

func TestProRata_EmptyBookIsIdempotent(t *testing.T) {
	ob := book.New()
	assert.Empty(t, (&ProRataMatcher{}).Match(ob))
	assert.Empty(t, (&ProRataMatcher{}).Match(ob))
	assert.True(t, ob.IsEmpty())
}
