// Package aggregate provides the summation helpers both matchers use
// to total order/fill quantities and to seed per-order cumulative
// quantity scoreboards. The original Rust source needed a separate
// Sigma<T> trait impl per type (orders, fills); a single generic
// function covers both in Go.
package aggregate

import "matchengine/internal/domain"

// Quantified is the type union Sigma sums over: domain.OrderSingle and
// domain.Fill, both of which carry a Qty field.
type Quantified interface {
	domain.OrderSingle | domain.Fill
}

// Sigma sums the Qty field over a slice of orders or fills.
func Sigma[T Quantified](items []T) uint32 {
	var sum uint32
	for _, item := range items {
		switch v := any(item).(type) {
		case domain.OrderSingle:
			sum += v.Qty
		case domain.Fill:
			sum += v.Qty
		}
	}
	return sum
}

// SigmaSide sums the Qty field of fills on the given side.
func SigmaSide(fills []domain.Fill, side domain.Side) uint32 {
	var sum uint32
	for _, f := range fills {
		if f.Side == side {
			sum += f.Qty
		}
	}
	return sum
}

// CumQtyMap builds the zero-initialized per-order cumulative quantity
// scoreboard both matchers use to track fills emitted so far in the
// current match cycle, keyed by client order id.
func CumQtyMap(orders []domain.OrderSingle) map[string]uint32 {
	m := make(map[string]uint32, len(orders))
	for _, o := range orders {
		m[o.ClOrdID] = 0
	}
	return m
}
