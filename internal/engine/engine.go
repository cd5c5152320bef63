// Package engine wires the order book and a matcher together into the
// single entry point the transport layer drives:
// accept an order, run a match cycle, read back fills and depth.
package engine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"matchengine/internal/book"
	"matchengine/internal/domain"
	"matchengine/internal/matcher"
)

// Engine owns one order book and the matcher configured to run over
// it. One Engine holds the resting orders of every symbol in that
// single book, since OrderBookKey already carries the symbol; the
// teacher's per-AssetType Books map is collapsed into it.
type Engine struct {
	mu      sync.Mutex
	book    *book.OrderBook
	matcher matcher.Matcher
	metrics *metrics
}

// New returns an Engine using the matcher identified by tag ("FIFO" or
// "PRO"; see matcher.New).
func New(tag string) *Engine {
	return &Engine{
		book:    book.New(),
		matcher: matcher.New(tag),
	}
}

// WithMetrics attaches Prometheus instrumentation and registers it
// against reg. Calling this is optional; an Engine with no metrics
// attached runs identically, just without the counters.
func (e *Engine) WithMetrics(reg prometheus.Registerer) *Engine {
	e.metrics = newMetrics(reg)
	return e
}

// PlaceOrder inserts a resting order into the book. It returns
// book.ErrInvalidOrder for an order that fails domain validation.
func (e *Engine) PlaceOrder(order domain.OrderSingle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.book.Add(order); err != nil {
		if e.metrics != nil {
			e.metrics.ordersRejected.Inc()
		}
		return err
	}
	if e.metrics != nil {
		e.metrics.ordersAccepted.Inc()
	}
	log.Debug().Str("clOrdID", order.ClOrdID).Str("symbol", order.Symbol).
		Float64("price", order.Price).Uint32("qty", order.Qty).Msg("order accepted")
	return nil
}

// Match runs one match cycle over the book and returns the fills it
// produced. The book is left holding the post-match residual.
func (e *Engine) Match() []domain.Fill {
	e.mu.Lock()
	defer e.mu.Unlock()

	fills := e.matcher.Match(e.book)
	if e.metrics != nil {
		e.metrics.fillsEmitted.Add(float64(len(fills)))
		e.metrics.matchCycles.Inc()
	}
	log.Debug().Int("fills", len(fills)).Msg("match cycle complete")
	return fills
}

// MarketDepth returns the current per-price aggregate quantity on
// both sides for the given symbol.
func (e *Engine) MarketDepth(symbol string) (bids, offers []book.DepthLevel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.MarketDepth(symbol)
}

// IsEmpty reports whether the book currently holds no resting orders.
func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.IsEmpty()
}

// FullDepth returns per-(price, symbol) resting quantity across the
// whole book, on both sides -- for diagnostic dumps that aren't
// scoped to one symbol.
func (e *Engine) FullDepth() (bids, offers []book.DepthLevel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.AllDepth(domain.Buy), e.book.AllDepth(domain.Sell)
}

