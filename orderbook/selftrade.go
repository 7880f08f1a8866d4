package orderbook

// SelfTradePolicy controls what happens when a taker would match
// against a resting order sharing its AccountRef. The README of the
// system this core is modeled on notes self-trade prevention is only
// partially implemented upstream; this core treats it as first-class
// (spec §4.4).
type SelfTradePolicy uint8

const (
	// STPAllow lets the trade happen normally (no protection).
	STPAllow SelfTradePolicy = iota
	// STPCancelTaker cancels the taker's remaining quantity before any
	// fill is recorded against the colliding maker.
	STPCancelTaker
	// STPCancelMaker cancels the colliding maker and lets the taker
	// continue sweeping the book.
	STPCancelMaker
	// STPCancelBoth cancels both the taker's remainder and the
	// colliding maker.
	STPCancelBoth
)
