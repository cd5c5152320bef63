// Package book implements the two-sided, price-keyed order book (spec
// §4.1). Storage is two github.com/tidwall/btree trees -- the same
// dependency and pattern the teacher's engine package used for a
// single-symbol book -- generalized to the spec's (price, symbol) key
// and given a deterministic iteration order on both sides.
package book

import (
	"errors"

	"github.com/tidwall/btree"

	"matchengine/internal/domain"
)

// ErrInvalidOrder is returned by Add when the order fails
// domain.OrderSingle.IsValid.
var ErrInvalidOrder = errors.New("book: invalid order")

// OrderBook holds the resting buy and sell queues, each keyed by
// (price, symbol).
type OrderBook struct {
	bids *btree.BTreeG[*priceLevel]
	asks *btree.BTreeG[*priceLevel]
}

// New returns an empty order book.
func New() *OrderBook {
	return &OrderBook{
		bids: btree.NewBTreeG(bidLess),
		asks: btree.NewBTreeG(askLess),
	}
}

func (b *OrderBook) treeFor(side domain.Side) *btree.BTreeG[*priceLevel] {
	if side == domain.Sell {
		return b.asks
	}
	return b.bids
}

// Add appends a valid order to the tail of its (price, symbol) queue
// on the side the order carries, creating the queue if absent.
// Invalid orders are rejected with ErrInvalidOrder and never inserted
// -- see internal/loader for the bulk-load path's silent-skip
// behavior over the text format.
func (b *OrderBook) Add(order domain.OrderSingle) error {
	if !order.IsValid() {
		return ErrInvalidOrder
	}
	tree := b.treeFor(order.Side)
	key := order.Key()
	probe := newLevel(key)
	if existing, ok := tree.Get(probe); ok {
		existing.orders = append(existing.orders, order)
		return nil
	}
	probe.orders = append(probe.orders, order)
	tree.Set(probe)
	return nil
}

// OrdersFor returns a snapshot of one side's resting queues, walked in
// this book's deterministic order (bids highest-price-first, asks
// lowest-price-first, symbol as tiebreak). The returned slices are
// copies; mutating them does not affect the book.
func (b *OrderBook) OrdersFor(side domain.Side) map[domain.OrderBookKey][]domain.OrderSingle {
	out := make(map[domain.OrderBookKey][]domain.OrderSingle)
	b.treeFor(side).Scan(func(level *priceLevel) bool {
		cp := make([]domain.OrderSingle, len(level.orders))
		copy(cp, level.orders)
		out[level.key] = cp
		return true
	})
	return out
}

// OrderedKeys returns a side's keys in this book's deterministic scan
// order -- useful to callers (matchers) that must iterate the same
// order the book itself would.
func (b *OrderBook) OrderedKeys(side domain.Side) []domain.OrderBookKey {
	var keys []domain.OrderBookKey
	b.treeFor(side).Scan(func(level *priceLevel) bool {
		keys = append(keys, level.key)
		return true
	})
	return keys
}

// IsEmpty reports whether both sides of the book hold no resting
// orders.
func (b *OrderBook) IsEmpty() bool {
	return b.bids.Len() == 0 && b.asks.Len() == 0
}

// UpdateSide replaces one side of the book wholesale from the given
// snapshot. Keys mapped to an empty slice are dropped rather than
// stored as empty queues (book invariant #3).
func (b *OrderBook) UpdateSide(side domain.Side, orders map[domain.OrderBookKey][]domain.OrderSingle) {
	less := bidLess
	if side == domain.Sell {
		less = askLess
	}
	fresh := btree.NewBTreeG(less)
	for key, queue := range orders {
		if len(queue) == 0 {
			continue
		}
		level := newLevel(key)
		level.orders = append(level.orders, queue...)
		fresh.Set(level)
	}
	if side == domain.Sell {
		b.asks = fresh
	} else {
		b.bids = fresh
	}
}

// Replace overwrites both sides of the book from the given snapshots,
// as the FIFO matcher does once a match cycle completes.
func (b *OrderBook) Replace(buy, sell map[domain.OrderBookKey][]domain.OrderSingle) {
	b.UpdateSide(domain.Buy, buy)
	b.UpdateSide(domain.Sell, sell)
}

// DepthLevel is one aggregated (price, quantity) entry in a market
// depth view.
type DepthLevel struct {
	Price float64
	Qty   uint32
}

// MarketDepth returns per-price aggregate quantity for the given
// symbol on both sides, in this book's deterministic scan order (not
// a documented ordering guarantee -- spec §6 leaves depth order
// unspecified; callers sort if they need one).
func (b *OrderBook) MarketDepth(symbol string) (bids, offers []DepthLevel) {
	bids = depthFor(b.bids, symbol)
	offers = depthFor(b.asks, symbol)
	return bids, offers
}

// AllDepth returns one DepthLevel per resting (price, symbol) queue on
// the given side, across every symbol -- used by diagnostic dumps of
// the whole book rather than a single symbol's view.
func (b *OrderBook) AllDepth(side domain.Side) []DepthLevel {
	var out []DepthLevel
	b.treeFor(side).Scan(func(level *priceLevel) bool {
		var qty uint32
		for _, o := range level.orders {
			qty += o.Qty
		}
		out = append(out, DepthLevel{Price: level.key.Price, Qty: qty})
		return true
	})
	return out
}

func depthFor(tree *btree.BTreeG[*priceLevel], symbol string) []DepthLevel {
	var out []DepthLevel
	tree.Scan(func(level *priceLevel) bool {
		if level.key.Symbol != symbol {
			return true
		}
		var qty uint32
		for _, o := range level.orders {
			qty += o.Qty
		}
		out = append(out, DepthLevel{Price: level.key.Price, Qty: qty})
		return true
	})
	return out
}
