// Package loader parses the order text format (spec §6) and builds
// order books from it, mirroring the original's
// common/utils.rs::create_order_from_string / create_order_book.
package loader

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"matchengine/internal/book"
	"matchengine/internal/domain"
)

// ParseLine parses one "<cl_ord_id> <symbol> <qty> <price> <side>"
// line. A line with a field count other than 5, or with a
// non-numeric qty/price, is rejected: ParseLine returns a
// zero-valued OrderSingle that fails IsValid, exactly as the original
// parser's error path does.
func ParseLine(line string) domain.OrderSingle {
	tokens := strings.Split(line, " ")
	if len(tokens) != 5 {
		log.Error().Str("line", line).Msg("order line must contain 5 fields: cl_ord_id symbol qty price side")
		return domain.OrderSingle{}
	}

	qty, err := strconv.ParseUint(tokens[2], 10, 32)
	if err != nil {
		log.Error().Str("line", line).Err(err).Msg("invalid quantity field")
		return domain.OrderSingle{}
	}
	price, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		log.Error().Str("line", line).Err(err).Msg("invalid price field")
		return domain.OrderSingle{}
	}

	return domain.OrderSingle{
		ClOrdID:   tokens[0],
		Symbol:    tokens[1],
		Qty:       uint32(qty),
		Price:     price,
		Side:      domain.SideFromString(tokens[4]),
		OrderType: domain.Limit,
	}
}

// ReadLines reads an order file into one string per line. An empty
// path returns no lines.
func ReadLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// BuildOrderBook parses each line and inserts the valid ones into a
// fresh OrderBook. Malformed lines are logged by ParseLine and skipped;
// a line that parses but fails IsValid is skipped without a log line.
// The bulk-load path never rejects the whole batch over one bad line
// (spec §7). A client order id seen more than once is logged
// as a warning but still inserted: the book does not enforce cl_ord_id
// uniqueness (spec §3 invariant 4, "not currently enforced" -- OQ-1 in
// DESIGN.md).
func BuildOrderBook(lines []string) *book.OrderBook {
	ob := book.New()
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		order := ParseLine(line)
		if !order.IsValid() {
			continue
		}
		if seen[order.ClOrdID] {
			log.Warn().Str("clOrdID", order.ClOrdID).Msg("duplicate client order id inserted; uniqueness is not enforced")
		}
		seen[order.ClOrdID] = true
		if err := ob.Add(order); err != nil {
			log.Error().Err(err).Str("clOrdID", order.ClOrdID).Msg("failed to insert order")
		}
	}
	return ob
}
