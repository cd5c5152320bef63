package domain

import "matchengine/internal/idgen"

// Fill is an execution report produced by a match cycle. A match
// between a buy and a sell order always produces exactly one Fill for
// each side, cross-referenced by SecondaryClOrdID.
type Fill struct {
	Symbol           string
	OrderID          string
	ExecutionID      string
	ExecType         Status
	Qty              uint32
	LeavesQty        uint32
	CumQty           uint32
	Price            float64
	Side             Side
	ClOrdID          string
	SecondaryClOrdID string
	Status           Status
}

// NewFill derives the initial fill for an order about to be matched:
// qty equals the order's full remaining quantity, cum_qty is zero,
// leaves_qty equals qty, and status starts Filled -- the matcher
// overwrites qty/cum_qty/leaves_qty/status as it allocates against
// the book.
func NewFill(order OrderSingle) Fill {
	return Fill{
		Symbol:           order.Symbol,
		OrderID:          idgen.Generate(),
		ExecutionID:      idgen.Generate(),
		ExecType:         New,
		Qty:              order.Qty,
		LeavesQty:        order.Qty,
		CumQty:           0,
		Price:            order.Price,
		Side:             order.Side,
		ClOrdID:          order.ClOrdID,
		SecondaryClOrdID: "",
		Status:           Filled,
	}
}
