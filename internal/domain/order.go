package domain

import (
	"fmt"
	"strings"
)

// OrderSingle is a resting or incoming limit order. Qty is the
// *remaining* quantity: matchers mutate it in place as the order is
// consumed.
type OrderSingle struct {
	ClOrdID   string
	Symbol    string
	Qty       uint32
	Price     float64
	Side      Side
	OrderType OrderType
}

// IsValid reports whether the order satisfies the book's acceptance
// invariant: non-empty symbol and id, positive price and qty, a known
// side, and a Limit order type (Market orders are never honored).
func (o OrderSingle) IsValid() bool {
	return strings.TrimSpace(o.Symbol) != "" &&
		o.Price > 0 &&
		o.Qty > 0 &&
		(o.Side == Buy || o.Side == Sell) &&
		o.OrderType == Limit &&
		strings.TrimSpace(o.ClOrdID) != ""
}

// Key returns the order's book key: the (price, symbol) pair its
// resting queue is filed under.
func (o OrderSingle) Key() OrderBookKey {
	return OrderBookKey{Price: o.Price, Symbol: o.Symbol}
}

// MatchingSide returns the side an order would cross against.
func (o OrderSingle) MatchingSide() Side {
	if o.Side == Buy {
		return Sell
	}
	return Buy
}

func (o OrderSingle) String() string {
	return fmt.Sprintf("OrderSingle{clOrdID: %s, symbol: %s, qty: %d, price: %.4f, side: %s}",
		o.ClOrdID, o.Symbol, o.Qty, o.Price, o.Side)
}

// OrderBookKey keys the book's resting queues. Two orders share a key
// iff they carry the same symbol and the exact same price -- no price
// improvement, no tick rounding.
type OrderBookKey struct {
	Price  float64
	Symbol string
}

func (k OrderBookKey) String() string {
	return fmt.Sprintf("%s@%.4f", k.Symbol, k.Price)
}
