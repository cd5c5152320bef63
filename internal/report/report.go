// Package report renders fills and market depth as tables, the Go
// idiomatic analogue of the original's prettytable::Table usage in
// Fill::pretty_print / print_market_depth_for.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"matchengine/internal/book"
	"matchengine/internal/domain"
)

// PrintFills renders one row per fill: side, symbol, qty, price,
// cum_qty, leaves_qty, status, cl_ord_id, secondary_cl_ord_id.
func PrintFills(w io.Writer, fills []domain.Fill) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Side", "Symbol", "Qty", "Price", "CumQty", "LeavesQty", "Status", "ClOrdID", "SecondaryClOrdID",
	})
	for _, f := range fills {
		table.Append([]string{
			f.Side.String(),
			f.Symbol,
			fmt.Sprintf("%d", f.Qty),
			fmt.Sprintf("%.4f", f.Price),
			fmt.Sprintf("%d", f.CumQty),
			fmt.Sprintf("%d", f.LeavesQty),
			f.Status.String(),
			f.ClOrdID,
			f.SecondaryClOrdID,
		})
	}
	table.Render()
}

// PrintDepth renders a two-column market depth view for one symbol:
// bids and offers, each as (price, aggregate qty) rows. Ordering
// within each column follows the book's own deterministic scan order
// (spec §6 leaves display order unspecified).
func PrintDepth(w io.Writer, symbol string, bids, offers []book.DepthLevel) {
	fmt.Fprintf(w, "Market depth for %s\n", symbol)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Bid Price", "Bid Qty", "Offer Price", "Offer Qty"})

	rows := len(bids)
	if len(offers) > rows {
		rows = len(offers)
	}
	for i := 0; i < rows; i++ {
		row := make([]string, 4)
		if i < len(bids) {
			row[0] = fmt.Sprintf("%.4f", bids[i].Price)
			row[1] = fmt.Sprintf("%d", bids[i].Qty)
		}
		if i < len(offers) {
			row[2] = fmt.Sprintf("%.4f", offers[i].Price)
			row[3] = fmt.Sprintf("%d", offers[i].Qty)
		}
		table.Append(row)
	}
	table.Render()
}
