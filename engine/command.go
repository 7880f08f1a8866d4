package engine

import (
	"bytes"
	"encoding/gob"

	"clobengine/orderbook"
)

// CommandKind tags which payload field of Command is meaningful
// (spec §9: tagged variants, not polymorphic objects).
type CommandKind uint8

const (
	CmdPlaceOrder CommandKind = iota
	CmdCancelOrder
	CmdAmendOrder
	CmdControl
)

func (k CommandKind) String() string {
	switch k {
	case CmdPlaceOrder:
		return "PlaceOrder"
	case CmdCancelOrder:
		return "CancelOrder"
	case CmdAmendOrder:
		return "AmendOrder"
	case CmdControl:
		return "Control"
	default:
		return "Unknown"
	}
}

// ControlKind tags which control action a Control command requests.
type ControlKind uint8

const (
	CtrlSuspend ControlKind = iota
	CtrlResume
	CtrlRewind
	CtrlShutdown
)

// PlaceOrderPayload is the body of a CmdPlaceOrder command.
type PlaceOrderPayload struct {
	OrderId    orderbook.OrderId
	Side       orderbook.Side
	Type       orderbook.OrderType
	Price      int64 // 0 for market
	Quantity   int64
	TIF        orderbook.TimeInForce
	AccountRef uint64
}

// CancelOrderPayload is the body of a CmdCancelOrder command.
type CancelOrderPayload struct {
	OrderId orderbook.OrderId
}

// AmendOrderPayload is the body of a CmdAmendOrder command. Nil
// pointers mean "leave unchanged".
type AmendOrderPayload struct {
	OrderId     orderbook.OrderId
	NewPrice    *int64
	NewQuantity *int64
}

// ControlPayload is the body of a CmdControl command. ToSeq is only
// meaningful when Kind == CtrlRewind.
type ControlPayload struct {
	Kind  ControlKind
	ToSeq uint64
}

// Command is the envelope pushed onto the engine's input queue (spec
// §6). Seq is assigned by a sequence.Allocator upstream of the engine;
// the engine never mints its own sequence numbers. TsIngress is an
// opaque ordering token carried only for downstream audit — the
// engine's own logic never reads the clock.
type Command struct {
	Seq        uint64
	Instrument string
	Kind       CommandKind
	TsIngress  uint64

	Place   PlaceOrderPayload
	Cancel  CancelOrderPayload
	Amend   AmendOrderPayload
	Control ControlPayload
}

// OrderId returns the order targeted by a business command, or the
// zero UUID for a Control command.
func (c Command) OrderId() orderbook.OrderId {
	switch c.Kind {
	case CmdPlaceOrder:
		return c.Place.OrderId
	case CmdCancelOrder:
		return c.Cancel.OrderId
	case CmdAmendOrder:
		return c.Amend.OrderId
	default:
		return orderbook.OrderId{}
	}
}

// encodeCommand gob-encodes a Command for the journal's Payload
// column. gob handles uuid.UUID's underlying [16]byte cleanly and
// needs no schema registration beyond the concrete struct types used
// here.
func encodeCommand(cmd Command) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cmd); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCommand reverses encodeCommand; exported for ingress, which
// only ever sees a Command as the opaque bytes a Kafka producer wrote.
func DecodeCommand(b []byte) (Command, error) {
	return decodeCommand(b)
}

// decodeCommand reverses encodeCommand, used when replaying a
// persisted journal to rebuild book state (journal.OpenWithReplay's
// callback).
func decodeCommand(b []byte) (Command, error) {
	var cmd Command
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}
