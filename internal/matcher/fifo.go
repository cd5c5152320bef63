package matcher

import (
	"matchengine/internal/aggregate"
	"matchengine/internal/book"
	"matchengine/internal/domain"
)

// FIFOMatcher allocates fills by price-time priority: within a price
// level, the resting order at the head of the queue is matched first.
// Ported from the original's matchers/fifo_matcher.rs.
type FIFOMatcher struct{}

// Match implements the Matcher contract. It walks the buy side in the
// book's deterministic key order (spec §9 resolution), and for each
// buy order in time-priority order, matches as much of it as possible
// against the resting sell queue at the exact same (price, symbol)
// key before moving to the next buy order.
func (m *FIFOMatcher) Match(ob *book.OrderBook) []domain.Fill {
	buySnapshot := ob.OrdersFor(domain.Buy)
	sellSnapshot := ob.OrdersFor(domain.Sell)

	var fills []domain.Fill
	buyResidual := make(map[domain.OrderBookKey][]domain.OrderSingle)

	for _, key := range ob.OrderedKeys(domain.Buy) {
		deque := buySnapshot[key]
		cumMap := aggregate.CumQtyMap(deque)
		var residualQueue []domain.OrderSingle

		for _, buyOrder := range deque {
			subFills := m.matchOneAgainst(sellSnapshot, cumMap, buyOrder)
			if len(subFills) == 0 {
				residualQueue = append(residualQueue, buyOrder)
				continue
			}

			total := aggregate.SigmaSide(subFills, domain.Buy)
			if total != buyOrder.Qty {
				updated := buyOrder
				updated.Qty = buyOrder.Qty - total
				residualQueue = append(residualQueue, updated)
			}
			fills = append(fills, subFills...)
		}

		if len(residualQueue) > 0 {
			buyResidual[key] = residualQueue
		}
	}

	ob.Replace(buyResidual, sellSnapshot)
	return fills
}

// matchOneAgainst matches a single buy order against the resting sell
// queue at its key, mutating sellMap in place (head removal or
// in-place head replacement) as each exchange order is consumed.
func (m *FIFOMatcher) matchOneAgainst(sellMap map[domain.OrderBookKey][]domain.OrderSingle, clCumMap map[string]uint32, buyOrder domain.OrderSingle) []domain.Fill {
	key := buyOrder.Key()
	queue, ok := sellMap[key]
	if !ok || len(queue) == 0 {
		return nil
	}

	// Snapshot taken once: the sell queue this call scans is fixed for
	// the duration of this buy order's matching, exactly as the
	// original takes one clone of the deque before iterating it.
	snapshot := make([]domain.OrderSingle, len(queue))
	copy(snapshot, queue)

	exCumMap := aggregate.CumQtyMap(snapshot)
	clientFill := domain.NewFill(buyOrder)

	var fills []domain.Fill
	remaining := queue
	for _, exchangeOrder := range snapshot {
		exFill := domain.NewFill(exchangeOrder)
		updateFills(buyOrder, &exchangeOrder, &clientFill, &exFill, clCumMap, exCumMap)

		fills = append(fills, clientFill, exFill)

		if exchangeOrder.Qty == 0 {
			remaining = popFront(remaining)
		} else {
			remaining = replaceFront(remaining, exchangeOrder)
		}

		if clientFill.Status.Equal(domain.Filled) {
			break
		}
	}

	if len(remaining) == 0 {
		delete(sellMap, key)
	} else {
		sellMap[key] = remaining
	}
	return fills
}

// updateFills allocates one buy/sell pair and sets both fills'
// qty/cum_qty/leaves_qty/status, cross-referencing secondary_cl_ord_id.
func updateFills(buyOrder domain.OrderSingle, exchangeOrder *domain.OrderSingle, clientFill, exFill *domain.Fill, clCumMap, exCumMap map[string]uint32) {
	clientFill.SecondaryClOrdID = exchangeOrder.ClOrdID
	exFill.SecondaryClOrdID = buyOrder.ClOrdID

	orderQty := buyOrder.Qty
	availQty := exchangeOrder.Qty
	leavesQty := clientFill.LeavesQty
	clCumQty := clCumMap[buyOrder.ClOrdID]

	if leavesQty <= availQty {
		exchangePartialFill(clCumQty, availQty, leavesQty, clientFill, exFill, exchangeOrder, exCumMap)
	} else {
		clientOrderPartialFill(orderQty, clientFill, exFill, exchangeOrder, clCumMap)
	}
}

// clientOrderPartialFill handles the case where the client (buy) order
// has more leaves than the resting exchange order can supply: the
// exchange order is consumed in full and the client stays partially
// filled.
func clientOrderPartialFill(orderQty uint32, clientFill, exFill *domain.Fill, exchangeOrder *domain.OrderSingle, clCumMap map[string]uint32) {
	availQty := exchangeOrder.Qty
	clCumQty := clCumMap[clientFill.ClOrdID] + availQty
	leavesQty := orderQty - clCumQty

	clientFill.Qty = availQty
	clientFill.CumQty = clCumQty
	clientFill.LeavesQty = leavesQty
	clientFill.Status = domain.PartialFill
	clCumMap[clientFill.ClOrdID] = clCumQty

	exFill.Qty = availQty
	exFill.CumQty = availQty
	exFill.LeavesQty = 0
	exFill.Status = domain.Filled
	exchangeOrder.Qty = 0
}

// exchangePartialFill handles the case where the resting exchange
// order can supply all of the client's remaining leaves: the client
// becomes fully filled and the exchange order's remainder (if any)
// stays resting.
func exchangePartialFill(clCumQty, availQty, leavesQty uint32, clientFill, exFill *domain.Fill, exchangeOrder *domain.OrderSingle, exCumMap map[string]uint32) {
	exCumQty := exCumMap[exFill.ClOrdID] + leavesQty
	clCumQty += leavesQty

	clientFill.Qty = leavesQty
	clientFill.CumQty = clCumQty
	clientFill.LeavesQty = 0
	clientFill.Status = domain.Filled

	exFill.Qty = leavesQty
	exFill.CumQty = exCumQty
	exFill.LeavesQty = availQty - leavesQty
	if exFill.LeavesQty == 0 {
		exFill.Status = domain.Filled
	} else {
		exFill.Status = domain.PartialFill
	}
	exchangeOrder.Qty = availQty - leavesQty
	exCumMap[exFill.ClOrdID] = exCumQty
}

func popFront(orders []domain.OrderSingle) []domain.OrderSingle {
	if len(orders) == 0 {
		return orders
	}
	return orders[1:]
}

func replaceFront(orders []domain.OrderSingle, updated domain.OrderSingle) []domain.OrderSingle {
	if len(orders) == 0 {
		return orders
	}
	out := make([]domain.OrderSingle, len(orders))
	copy(out, orders)
	out[0] = updated
	return out
}
