package matcher

import (
	"math"

	"matchengine/internal/aggregate"
	"matchengine/internal/book"
	"matchengine/internal/domain"
)

// ProRataMatcher allocates fills by proportional share of resting
// quantity rather than time priority. Ported from the original's
// matchers/prorata_matcher.rs, cleaned of the original's cumulative
// fill-total bookkeeping -- see DESIGN.md for why.
type ProRataMatcher struct{}

// Match implements the Matcher contract. It only considers price keys
// present on both sides of the book; a buy-only or sell-only key never
// participates in a pro-rata round.
func (m *ProRataMatcher) Match(ob *book.OrderBook) []domain.Fill {
	buySnapshot := ob.OrdersFor(domain.Buy)
	sellSnapshot := ob.OrdersFor(domain.Sell)

	var fills []domain.Fill
	for _, key := range ob.OrderedKeys(domain.Buy) {
		buyQueue := buySnapshot[key]
		sellQueue, ok := sellSnapshot[key]
		if !ok || len(sellQueue) == 0 {
			continue
		}

		subFills, residualBuy, residualSell := m.matchLevel(buyQueue, sellQueue)
		fills = append(fills, subFills...)

		if len(residualBuy) == 0 {
			delete(buySnapshot, key)
		} else {
			buySnapshot[key] = residualBuy
		}
		if len(residualSell) == 0 {
			delete(sellSnapshot, key)
		} else {
			sellSnapshot[key] = residualSell
		}
	}

	ob.Replace(buySnapshot, sellSnapshot)
	return fills
}

// matchLevel runs one price level's proportional allocation: each
// sell order, head to tail, is matched in a single round against the
// buy queue's *current* state (which may already reflect reductions
// from an earlier sell order at this same level).
func (m *ProRataMatcher) matchLevel(buyQueue, sellQueue []domain.OrderSingle) (fills []domain.Fill, residualBuy, residualSell []domain.OrderSingle) {
	cMap := aggregate.CumQtyMap(buyQueue)
	eMap := aggregate.CumQtyMap(sellQueue)

	workingBuy := append([]domain.OrderSingle(nil), buyQueue...)
	workingSell := append([]domain.OrderSingle(nil), sellQueue...)

	sellRounds := append([]domain.OrderSingle(nil), sellQueue...)
	for _, sellOrder := range sellRounds {
		if len(workingBuy) == 0 {
			break
		}
		total := aggregate.Sigma(workingBuy)
		if total == 0 {
			break
		}

		buyRound := append([]domain.OrderSingle(nil), workingBuy...)
		var roundFilled uint32
		for _, buyOrder := range buyRound {
			ratio := float64(buyOrder.Qty) / float64(total)
			fillQty := uint32(math.Floor(float64(sellOrder.Qty) * ratio))
			if fillQty == 0 {
				continue
			}

			clFill := createClientFill(buyOrder, sellOrder.ClOrdID, fillQty, cMap)
			exFill := createExchangeFill(sellOrder, buyOrder.ClOrdID, fillQty, eMap)
			fills = append(fills, clFill, exFill)
			roundFilled += fillQty

			workingBuy = rotateBuyAfterFill(workingBuy, buyOrder.ClOrdID, clFill.LeavesQty)
		}

		workingSell = reduceSellAfterRound(workingSell, sellOrder.ClOrdID, roundFilled)
	}

	return fills, workingBuy, workingSell
}

// createClientFill allocates the buy side's share of a pro-rata round.
func createClientFill(buyOrder domain.OrderSingle, secondaryClOrdID string, fillQty uint32, cMap map[string]uint32) domain.Fill {
	fill := domain.NewFill(buyOrder)
	cumQty := cMap[buyOrder.ClOrdID] + fillQty

	fill.Qty = fillQty
	fill.CumQty = cumQty
	fill.SecondaryClOrdID = secondaryClOrdID
	fill.LeavesQty = buyOrder.Qty - fillQty
	if fill.LeavesQty == 0 {
		fill.Status = domain.Filled
	} else {
		fill.Status = domain.PartialFill
	}
	cMap[buyOrder.ClOrdID] = cumQty
	return fill
}

// createExchangeFill allocates the sell side's counterpart fill for
// the same round.
func createExchangeFill(sellOrder domain.OrderSingle, secondaryClOrdID string, fillQty uint32, eMap map[string]uint32) domain.Fill {
	fill := domain.NewFill(sellOrder)
	cumQty := eMap[sellOrder.ClOrdID] + fillQty

	fill.Qty = fillQty
	fill.CumQty = cumQty
	fill.SecondaryClOrdID = secondaryClOrdID
	fill.LeavesQty = sellOrder.Qty - cumQty
	if fill.LeavesQty == 0 {
		fill.Status = domain.Filled
	} else {
		fill.Status = domain.PartialFill
	}
	eMap[sellOrder.ClOrdID] = cumQty
	return fill
}

// rotateBuyAfterFill removes the matched buy order from its current
// position; if it still carries leaves, it is re-appended at the tail
// with its reduced quantity (spec §9: the pro-rata buy-queue rotation,
// flagged as not obviously correct for subsequent rounds but preserved
// because it is observable behavior).
func rotateBuyAfterFill(queue []domain.OrderSingle, clOrdID string, leavesQty uint32) []domain.OrderSingle {
	out, removed := removeByClOrdID(queue, clOrdID)
	if leavesQty == 0 {
		return out
	}
	updated := removed
	updated.Qty = leavesQty
	return append(out, updated)
}

// reduceSellAfterRound removes the sell order if this round consumed
// it entirely, otherwise leaves it in place with its qty reduced by
// the round's total fill.
func reduceSellAfterRound(queue []domain.OrderSingle, clOrdID string, roundFilled uint32) []domain.OrderSingle {
	for i, o := range queue {
		if o.ClOrdID != clOrdID {
			continue
		}
		if roundFilled >= o.Qty {
			return append(append([]domain.OrderSingle(nil), queue[:i]...), queue[i+1:]...)
		}
		out := append([]domain.OrderSingle(nil), queue...)
		out[i].Qty -= roundFilled
		return out
	}
	return queue
}

// removeByClOrdID returns the queue with the first order matching
// clOrdID removed, along with the removed order itself.
func removeByClOrdID(queue []domain.OrderSingle, clOrdID string) ([]domain.OrderSingle, domain.OrderSingle) {
	for i, o := range queue {
		if o.ClOrdID == clOrdID {
			out := append(append([]domain.OrderSingle(nil), queue[:i]...), queue[i+1:]...)
			return out, o
		}
	}
	return queue, domain.OrderSingle{}
}
