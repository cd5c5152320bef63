// Package matcher implements the two interchangeable allocation
// algorithms this engine supports: FIFO (price-time priority) and
// Pro-Rata (proportional allocation). Both satisfy the same Matcher
// contract and are selected by a string tag, per spec §4.5.
package matcher

import (
	"matchengine/internal/book"
	"matchengine/internal/domain"
)

// Matcher consumes an order book by reference, mutating it to reflect
// the post-match state, and returns the ordered sequence of fills the
// match cycle produced. A matcher is stateless across cycles; all
// per-cycle bookkeeping lives in local scoreboards.
type Matcher interface {
	Match(ob *book.OrderBook) []domain.Fill
}

// Tag identifies which allocation algorithm to run.
type Tag string

const (
	FIFO    Tag = "FIFO"
	ProRata Tag = "PRO"
)

// New returns the matcher for the given tag. Any tag other than "PRO"
// -- including an unrecognized one -- defaults to FIFO, per spec §4.5.
func New(tag string) Matcher {
	if Tag(tag) == ProRata {
		return &ProRataMatcher{}
	}
	return &FIFOMatcher{}
}
