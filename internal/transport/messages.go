// Package transport implements the binary TCP wire protocol and
// server harness that sits in front of internal/engine. This is the
// "message-passing harness" the core matching engine treats as an
// external collaborator: nothing in internal/book, internal/matcher,
// or internal/domain imports this package.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"matchengine/internal/domain"
)

var (
	ErrUnknownMessageType = errors.New("transport: unknown message type")
	ErrMessageTooShort    = errors.New("transport: message too short for declared field lengths")
	ErrNotImplemented     = errors.New("transport: not implemented")
)

// MessageType identifies a client-to-server wire message.
type MessageType uint16

const (
	NewOrder MessageType = iota
	CancelOrder
	LogBook
)

// ReportMessageType identifies a server-to-client wire message.
type ReportMessageType byte

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

// Message format constants. Every message opens with a 2-byte
// MessageType; fixed fields follow, then any variable-length trailer.
const (
	BaseMessageHeaderLen        = 2
	NewOrderMessageHeaderLen    = 4 + 1 + 4 + 8 + 1 + 1 // symbol + orderType + qty + price + side + clOrdIDLen
	CancelOrderMessageHeaderLen = 1                     // clOrdIDLen
)

// Message is any parsed client request.
type Message interface {
	Type() MessageType
}

// NewOrderMessage carries a resting limit order request.
type NewOrderMessage struct {
	Symbol    string
	OrderType domain.OrderType
	Qty       uint32
	Price     float64
	Side      domain.Side
	ClOrdID   string
}

func (NewOrderMessage) Type() MessageType { return NewOrder }

// Order converts the wire message into the domain type the engine
// accepts.
func (m NewOrderMessage) Order() domain.OrderSingle {
	return domain.OrderSingle{
		ClOrdID:   m.ClOrdID,
		Symbol:    m.Symbol,
		Qty:       m.Qty,
		Price:     m.Price,
		Side:      m.Side,
		OrderType: m.OrderType,
	}
}

// CancelOrderMessage requests cancellation of a resting order.
// Cancellation is a Non-goal of the core (spec); the server accepts
// the wire message but the engine path always returns
// ErrNotImplemented.
type CancelOrderMessage struct {
	ClOrdID string
}

func (CancelOrderMessage) Type() MessageType { return CancelOrder }

// LogBookMessage asks the server to log a summary of its current depth
// (the number of bid and offer levels across all symbols).
type LogBookMessage struct{}

func (LogBookMessage) Type() MessageType { return LogBook }

// ParseMessage decodes one client message off the wire.
func ParseMessage(buf []byte) (Message, error) {
	if len(buf) < BaseMessageHeaderLen {
		return nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(buf[0:2]))
	body := buf[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case LogBook:
		return LogBookMessage{}, nil
	default:
		return nil, ErrUnknownMessageType
	}
}

func parseNewOrder(body []byte) (NewOrderMessage, error) {
	if len(body) < NewOrderMessageHeaderLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	symbol := stripTrailingZeros(body[0:4])
	orderType := domain.OrderType(body[4])
	qty := binary.BigEndian.Uint32(body[5:9])
	price := math.Float64frombits(binary.BigEndian.Uint64(body[9:17]))
	side := domain.Side(body[17])
	clOrdIDLen := int(body[18])

	expected := NewOrderMessageHeaderLen + clOrdIDLen
	if len(body) < expected {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	clOrdID := string(body[NewOrderMessageHeaderLen:expected])

	return NewOrderMessage{
		Symbol:    symbol,
		OrderType: orderType,
		Qty:       qty,
		Price:     price,
		Side:      side,
		ClOrdID:   clOrdID,
	}, nil
}

func parseCancelOrder(body []byte) (CancelOrderMessage, error) {
	if len(body) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	clOrdIDLen := int(body[0])
	expected := CancelOrderMessageHeaderLen + clOrdIDLen
	if len(body) < expected {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	return CancelOrderMessage{ClOrdID: string(body[CancelOrderMessageHeaderLen:expected])}, nil
}

// EncodeNewOrder serializes a NewOrderMessage for the wire -- used by
// cmd/client.
func EncodeNewOrder(m NewOrderMessage) []byte {
	clOrdIDLen := len(m.ClOrdID)
	buf := make([]byte, BaseMessageHeaderLen+NewOrderMessageHeaderLen+clOrdIDLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	copy(buf[2:6], padSymbol(m.Symbol))
	buf[6] = byte(m.OrderType)
	binary.BigEndian.PutUint32(buf[7:11], m.Qty)
	binary.BigEndian.PutUint64(buf[11:19], math.Float64bits(m.Price))
	buf[19] = byte(m.Side)
	buf[20] = byte(clOrdIDLen)
	copy(buf[21:], m.ClOrdID)
	return buf
}

// EncodeCancelOrder serializes a CancelOrderMessage for the wire.
func EncodeCancelOrder(m CancelOrderMessage) []byte {
	clOrdIDLen := len(m.ClOrdID)
	buf := make([]byte, BaseMessageHeaderLen+CancelOrderMessageHeaderLen+clOrdIDLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	buf[2] = byte(clOrdIDLen)
	copy(buf[3:], m.ClOrdID)
	return buf
}

// EncodeLogBook serializes a LogBookMessage for the wire.
func EncodeLogBook() []byte {
	buf := make([]byte, BaseMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(LogBook))
	return buf
}

func padSymbol(symbol string) []byte {
	out := make([]byte, 4)
	copy(out, symbol)
	return out
}

func stripTrailingZeros(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// Report is a server-to-client execution or error report, one wire
// representation of a domain.Fill (or of an out-of-band error).
type Report struct {
	MessageType      ReportMessageType
	Symbol           string
	Side             domain.Side
	Status           domain.Status
	Qty              uint32
	CumQty           uint32
	LeavesQty        uint32
	Price            float64
	ClOrdID          string
	SecondaryClOrdID string
	Err              string
}

// reportFixedHeaderLen: msgType(1) + side(1) + status(1) + qty(4) +
// cumQty(4) + leavesQty(4) + price(8) + symbol(4) + clOrdIDLen(2) +
// secondaryClOrdIDLen(2) + errLen(4).
const reportFixedHeaderLen = 1 + 1 + 1 + 4 + 4 + 4 + 8 + 4 + 2 + 2 + 4

// FillToReport converts a matcher fill into its wire report.
func FillToReport(f domain.Fill) Report {
	return Report{
		MessageType:      ExecutionReport,
		Symbol:           f.Symbol,
		Side:             f.Side,
		Status:           f.Status,
		Qty:              f.Qty,
		CumQty:           f.CumQty,
		LeavesQty:        f.LeavesQty,
		Price:            f.Price,
		ClOrdID:          f.ClOrdID,
		SecondaryClOrdID: f.SecondaryClOrdID,
	}
}

// ErrorToReport wraps a server-side error for transmission.
func ErrorToReport(err error) Report {
	return Report{MessageType: ErrorReport, Err: fmt.Sprint(err)}
}

// Serialize encodes the report for the wire.
func (r Report) Serialize() []byte {
	clOrdIDLen := len(r.ClOrdID)
	secondaryLen := len(r.SecondaryClOrdID)
	errLen := len(r.Err)

	buf := make([]byte, reportFixedHeaderLen+clOrdIDLen+secondaryLen+errLen)
	buf[0] = byte(r.MessageType)
	buf[1] = byte(r.Side)
	buf[2] = r.Status.Char()
	binary.BigEndian.PutUint32(buf[3:7], r.Qty)
	binary.BigEndian.PutUint32(buf[7:11], r.CumQty)
	binary.BigEndian.PutUint32(buf[11:15], r.LeavesQty)
	binary.BigEndian.PutUint64(buf[15:23], math.Float64bits(r.Price))
	copy(buf[23:27], padSymbol(r.Symbol))
	binary.BigEndian.PutUint16(buf[27:29], uint16(clOrdIDLen))
	binary.BigEndian.PutUint16(buf[29:31], uint16(secondaryLen))
	binary.BigEndian.PutUint32(buf[31:35], uint32(errLen))

	offset := reportFixedHeaderLen
	copy(buf[offset:], r.ClOrdID)
	offset += clOrdIDLen
	copy(buf[offset:], r.SecondaryClOrdID)
	offset += secondaryLen
	copy(buf[offset:], r.Err)

	return buf
}

// ParseReportHeader decodes a report's fixed-length header, returning
// the report (sans variable trailer) and the lengths the caller needs
// to read the trailer with.
func ParseReportHeader(buf []byte) (r Report, clOrdIDLen, secondaryLen, errLen int, err error) {
	if len(buf) < reportFixedHeaderLen {
		return Report{}, 0, 0, 0, ErrMessageTooShort
	}
	r.MessageType = ReportMessageType(buf[0])
	r.Side = domain.Side(buf[1])
	r.Status = domain.StatusFromChar(buf[2])
	r.Qty = binary.BigEndian.Uint32(buf[3:7])
	r.CumQty = binary.BigEndian.Uint32(buf[7:11])
	r.LeavesQty = binary.BigEndian.Uint32(buf[11:15])
	r.Price = math.Float64frombits(binary.BigEndian.Uint64(buf[15:23]))
	r.Symbol = stripTrailingZeros(buf[23:27])
	clOrdIDLen = int(binary.BigEndian.Uint16(buf[27:29]))
	secondaryLen = int(binary.BigEndian.Uint16(buf[29:31]))
	errLen = int(binary.BigEndian.Uint32(buf[31:35]))
	return r, clOrdIDLen, secondaryLen, errLen, nil
}
