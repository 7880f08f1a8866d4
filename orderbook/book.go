package orderbook

import "fmt"

// OrderBook owns the two sides of one instrument and exposes only
// whole-book operations (Place/Cancel/Amend) so invariants I1-I5
// cannot be observed broken mid-update (spec §4.3).
type OrderBook struct {
	Bids *HalfBook
	Asks *HalfBook

	matcher *Matcher
}

// NewOrderBook constructs an empty book using the given self-trade policy.
func NewOrderBook(stp SelfTradePolicy) *OrderBook {
	return &OrderBook{
		Bids:    NewHalfBook(Bid),
		Asks:    NewHalfBook(Ask),
		matcher: NewMatcher(stp),
	}
}

func (b *OrderBook) halfBook(s Side) *HalfBook {
	if s == Bid {
		return b.Bids
	}
	return b.Asks
}

// BestBid returns the current best bid price, or 0 if there are no bids.
func (b *OrderBook) BestBid() int64 { return b.Bids.BestPrice() }

// BestAsk returns the current best ask price, or 0 if there are no asks.
func (b *OrderBook) BestAsk() int64 { return b.Asks.BestPrice() }

// Place runs o through the matcher and, if a remainder should rest
// (GTC limit, partially or fully unfilled), inserts it into its side
// at o.Price and records its locator in idx.
func (b *OrderBook) Place(idx *IndexMap, o *Order) *TradeReport {
	if _, exists := idx.Get(o.ID); exists {
		return &TradeReport{Outcome: TakerOutcome{Kind: OutcomeRejected, Reason: RejectDuplicateOrderId}}
	}

	rep := b.matcher.Match(b, idx, o)

	if rep.Outcome.Kind == OutcomePartiallyRested {
		hb := b.halfBook(o.Side)
		lvl := hb.GetOrCreate(o.Price)
		memo := lvl.Push(o)
		restIdx := OrderIndex{Side: o.Side, Price: o.Price, Memo: memo}
		idx.Put(o.ID, restIdx)
		rep.Outcome.Index = restIdx
	}

	return rep
}

// Cancel removes a resting order by external id. It returns the
// removed order (so the caller/journal can derive an inverse op) or
// a CancelError if the order is not currently resting.
func (b *OrderBook) Cancel(idx *IndexMap, id OrderId) (*Order, error) {
	loc, ok := idx.Get(id)
	if !ok {
		return nil, &CancelError{Reason: RejectOrderNotFound}
	}

	hb := b.halfBook(loc.Side)
	lvl, pos, found := hb.Locate(loc.Price)
	if !found {
		panic(fmt.Errorf("orderbook: index inconsistent, level %d missing for order %s", loc.Price, id))
	}
	o, found := lvl.RemoveByMemo(loc.Memo)
	if !found {
		panic(fmt.Errorf("orderbook: index inconsistent, memo %d missing for order %s", loc.Memo, id))
	}

	hb.RemoveEmpty(pos)
	idx.Delete(id)
	o.Status = Inactive
	return o, nil
}

// AmendResult describes the effect of a successful Amend.
type AmendResult struct {
	// Repriced is true when the price changed; the order was canceled
	// and reinserted, losing time priority, and may have traded
	// immediately against the book (TradeReport is non-nil in that case).
	Repriced bool
	Index    OrderIndex
	Trade    *TradeReport
}

// Amend changes an order's price and/or remaining quantity.
// Quantity-only amends update the resting order in place and keep its
// time priority. Any price change is implemented as cancel+place
// (spec §4.3 design note) and therefore loses time priority and may
// immediately cross the book.
func (b *OrderBook) Amend(idx *IndexMap, id OrderId, newPrice *int64, newQty *int64) (*AmendResult, error) {
	loc, ok := idx.Get(id)
	if !ok {
		return nil, &AmendError{Reason: RejectOrderNotFound}
	}

	repricing := newPrice != nil && *newPrice != loc.Price

	if !repricing {
		hb := b.halfBook(loc.Side)
		lvl, _, found := hb.Locate(loc.Price)
		if !found {
			panic(fmt.Errorf("orderbook: index inconsistent, level %d missing for order %s", loc.Price, id))
		}
		o := findInLevel(lvl, loc.Memo)
		if o == nil {
			panic(fmt.Errorf("orderbook: index inconsistent, memo %d missing for order %s", loc.Memo, id))
		}
		if newQty != nil {
			delta := *newQty - o.Remaining()
			o.Qty += delta
			lvl.TotalQty += delta
		}
		return &AmendResult{Index: loc}, nil
	}

	removed, err := b.Cancel(idx, id)
	if err != nil {
		return nil, err
	}

	remaining := removed.Remaining()
	if newQty != nil {
		remaining = *newQty
	}
	replacement := &Order{
		ID:         removed.ID,
		Side:       removed.Side,
		Type:       Limit,
		Price:      *newPrice,
		Qty:        remaining,
		TIF:        GTC,
		AccountRef: removed.AccountRef,
		Seq:        removed.Seq,
	}

	rep := b.Place(idx, replacement)
	return &AmendResult{Repriced: true, Index: rep.Outcome.Index, Trade: rep}, nil
}

func findInLevel(lvl *PriceLevel, memo uint64) *Order {
	for o := lvl.Head(); o != nil; o = o.Next() {
		if o.Memo == memo {
			return o
		}
	}
	return nil
}
