package orderbook

import "github.com/google/uuid"

// OrderId is the external handle for an order, supplied by the caller
// at ingress. The engine never mints its own ids.
type OrderId = uuid.UUID

// Side is one of Bid or Ask.
type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// OrderType distinguishes limit orders from market orders. Market
// orders carry Price == 0 and must use TIF IOC.
type OrderType uint8

const (
	Limit OrderType = iota
	Market
)

// TimeInForce controls what happens to a resting remainder after a
// taker's sweep terminates.
type TimeInForce uint8

const (
	GTC TimeInForce = iota
	IOC
	FOK
)

func (t TimeInForce) String() string {
	switch t {
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "GTC"
	}
}

// Status reflects whether an order is still resting in a PriceLevel.
type Status uint8

const (
	Active Status = iota
	Inactive
)

// Order is owned exclusively by the PriceLevel that contains it; the
// id->index map described in spec §3 stores locators only, never a
// pointer into this struct's ownership.
type Order struct {
	ID     OrderId
	Side   Side
	Type   OrderType
	Price  int64 // 0 for market orders
	Qty    int64 // original quantity, > 0
	Filled int64
	TIF    TimeInForce
	// AccountRef is opaque to matching; only used for self-trade detection.
	AccountRef uint64
	// Seq is the engine-assigned submit sequence number (ingress order).
	Seq uint64
	// Memo is the per-price-level insertion counter assigned by
	// PriceLevel.Push; it is preserved across rewind so ReinstateFills
	// can restore exact time priority.
	Memo uint64

	Status Status

	next, prev *Order
}

// Remaining returns the order's unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.Qty - o.Filled
}

// Next returns the next order at the same price level, in time
// priority order (nil at the tail). Read-only traversal helper.
func (o *Order) Next() *Order { return o.next }

// Prev returns the previous order at the same price level (nil at the head).
func (o *Order) Prev() *Order { return o.prev }

// Reset clears an Order in place for reuse from a memory.Pool.
func (o *Order) Reset() { *o = Order{} }
