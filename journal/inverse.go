package journal

import "clobengine/orderbook"

// InverseKind tags which InverseOp variant is held by an Entry (spec §4.5).
type InverseKind uint8

const (
	InverseNoop InverseKind = iota
	InverseRemoveOrder
	InverseReinstateFills
	InverseReinstateAndRemove
	InverseReplaceOrder
)

func (k InverseKind) String() string {
	switch k {
	case InverseRemoveOrder:
		return "RemoveOrder"
	case InverseReinstateFills:
		return "ReinstateFills"
	case InverseReinstateAndRemove:
		return "ReinstateFills+RemoveOrder"
	case InverseReplaceOrder:
		return "ReplaceOrder"
	default:
		return "Noop"
	}
}

// InverseOp is the left-inverse of one applied command, derived at
// apply time per the table in spec §4.5.
type InverseOp struct {
	Kind InverseKind

	// RemoveOrder / ReinstateAndRemove
	RemovedOrderId orderbook.OrderId
	RemovedIndex   orderbook.OrderIndex

	// ReinstateFills / ReinstateAndRemove
	Fills []orderbook.MakerSnapshot

	// ReplaceOrder (Cancel and Amend inverses)
	Original      orderbook.Order
	OriginalIndex orderbook.OrderIndex
	WasResting    bool // false if the original order was not in the book (e.g. amend of an order state snapshot used only for full rebuild)
}

// DeriveForPlace builds the inverse of a PlaceOrder given the
// TradeReport produced by OrderBook.Place and the taker order's
// post-match state.
func DeriveForPlace(taker *orderbook.Order, fills []orderbook.MakerSnapshot, rep *orderbook.TradeReport) InverseOp {
	switch rep.Outcome.Kind {
	case orderbook.OutcomeRejected, orderbook.OutcomeDiscarded:
		if len(fills) == 0 {
			return InverseOp{Kind: InverseNoop}
		}
		// IOC/Market partial fill: taker never rests, but makers still
		// need reinstating.
		return InverseOp{Kind: InverseReinstateFills, Fills: fills}
	case orderbook.OutcomePartiallyRested:
		if len(fills) == 0 {
			return InverseOp{Kind: InverseRemoveOrder, RemovedOrderId: taker.ID, RemovedIndex: rep.Outcome.Index}
		}
		return InverseOp{
			Kind:           InverseReinstateAndRemove,
			Fills:          fills,
			RemovedOrderId: taker.ID,
			RemovedIndex:   rep.Outcome.Index,
		}
	case orderbook.OutcomeFilled:
		if len(fills) == 0 {
			// Rested fully against nothing it hadn't previously crossed:
			// taker fully filled with zero fills is impossible, but an
			// empty-book GTC rest-then-immediately-filled case has fills.
			return InverseOp{Kind: InverseNoop}
		}
		return InverseOp{Kind: InverseReinstateFills, Fills: fills}
	default:
		return InverseOp{Kind: InverseNoop}
	}
}

// DeriveForCancel builds the inverse of a successful CancelOrder: put
// the exact removed order back at its exact former slot.
func DeriveForCancel(removed orderbook.Order, origIndex orderbook.OrderIndex) InverseOp {
	return InverseOp{Kind: InverseReplaceOrder, Original: removed, OriginalIndex: origIndex, WasResting: true}
}

// DeriveForAmend builds the inverse of a successful AmendOrder: restore
// the pre-amend order state at its pre-amend slot. For a quantity-only
// amend the slot is unchanged; for a repriced amend the original slot
// (pre cancel+replace) is restored instead of the new one.
func DeriveForAmend(original orderbook.Order, origIndex orderbook.OrderIndex) InverseOp {
	return InverseOp{Kind: InverseReplaceOrder, Original: original, OriginalIndex: origIndex, WasResting: true}
}

// Apply undoes op against book/idx. It is the left-inverse of whatever
// forward operation produced it, applied to the exact state the
// forward operation observed (spec §4.5).
func Apply(op InverseOp, book *orderbook.OrderBook, idx *orderbook.IndexMap) {
	switch op.Kind {
	case InverseNoop:
		return
	case InverseRemoveOrder:
		removeAt(book, idx, op.RemovedOrderId, op.RemovedIndex)
	case InverseReinstateFills:
		for i := len(op.Fills) - 1; i >= 0; i-- {
			reinstate(book, idx, op.Fills[i])
		}
	case InverseReinstateAndRemove:
		removeAt(book, idx, op.RemovedOrderId, op.RemovedIndex)
		for i := len(op.Fills) - 1; i >= 0; i-- {
			reinstate(book, idx, op.Fills[i])
		}
	case InverseReplaceOrder:
		cur, ok := idx.Get(op.Original.ID)
		switch {
		case ok && cur == op.OriginalIndex:
			// In-place quantity amend: the order never left its slot, so
			// undo it the same way (no unlink/reinsert, priority untouched).
			hb := sideBook(book, op.Original.Side)
			if lvl, _, found := hb.Locate(cur.Price); found {
				lvl.RestoreOrderState(cur.Memo, op.Original.Qty, op.Original.Filled)
			}
		default:
			// Undo whatever currently occupies the order's id (a cancel left
			// nothing behind; a repriced amend left it at a new slot).
			if ok {
				removeAt(book, idx, op.Original.ID, cur)
			}
			if op.WasResting {
				reinstate(book, idx, orderbook.MakerSnapshot{Order: op.Original, Index: op.OriginalIndex, WasRemoved: true})
			}
		}
	}
}

func sideBook(book *orderbook.OrderBook, s orderbook.Side) *orderbook.HalfBook {
	if s == orderbook.Bid {
		return book.Bids
	}
	return book.Asks
}

func removeAt(book *orderbook.OrderBook, idx *orderbook.IndexMap, id orderbook.OrderId, loc orderbook.OrderIndex) {
	hb := sideBook(book, loc.Side)
	lvl, pos, found := hb.Locate(loc.Price)
	if !found {
		return // already gone; nothing to undo
	}
	if _, ok := lvl.RemoveByMemo(loc.Memo); ok {
		idx.Delete(id)
	}
	hb.RemoveEmpty(pos)
}

// reinstate undoes one fill against a maker. If the maker is still
// resting (the fill only partially consumed it), its Filled quantity
// is restored in place, leaving its position in the queue untouched
// relative to siblings pushed after it. If the fill fully consumed and
// popped the maker, it is reinserted at its original memo slot.
func reinstate(book *orderbook.OrderBook, idx *orderbook.IndexMap, f orderbook.MakerSnapshot) {
	if !f.WasRemoved {
		hb := sideBook(book, f.Order.Side)
		if lvl, _, found := hb.Locate(f.Index.Price); found {
			if lvl.RestoreOrderState(f.Index.Memo, f.Order.Qty, f.Order.Filled) {
				return
			}
		}
		// Index says it should still be resting but it isn't: fall
		// through and treat it like a removed order instead.
	}

	restored := f.Order
	hb := sideBook(book, restored.Side)
	lvl := hb.GetOrCreate(f.Index.Price)
	lvl.ReinsertAtMemo(&restored)
	idx.Put(restored.ID, f.Index)
}
