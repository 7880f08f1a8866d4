package orderbook

// Fill is one maker/taker match produced by a sweep.
type Fill struct {
	MakerOrderId     OrderId
	TakerOrderId     OrderId
	Price            int64
	Quantity         int64
	MakerFullyFilled bool
}

// OutcomeKind tags what ultimately happened to the taker order.
type OutcomeKind uint8

const (
	OutcomeFilled OutcomeKind = iota
	OutcomePartiallyRested
	OutcomeRejected
	OutcomeDiscarded
)

// TakerOutcome is the terminal state of the taker order after a sweep.
type TakerOutcome struct {
	Kind   OutcomeKind
	Index  OrderIndex   // valid when Kind == OutcomePartiallyRested
	Reason RejectReason // valid when Kind == OutcomeRejected
}

// MakerSnapshot captures a resting maker's exact state, and the slot
// it occupied, immediately before one fill (normal match or self-trade
// cancellation) was applied against it. The journal package uses these
// to derive an exact InverseOp (spec §4.5): memo is part of Index, so
// reinstating a snapshot restores exact time priority.
type MakerSnapshot struct {
	Order      Order
	Index      OrderIndex
	WasRemoved bool
}

// TradeReport is everything OrderBook.Place needs to turn into events:
// the fills produced, the taker's terminal outcome, any resting maker
// orders that were removed as a side effect of self-trade protection
// (so the engine can emit OrderCanceled for them too), and the maker
// snapshots needed to invert this Place at the journal layer.
type TradeReport struct {
	Fills          []Fill
	Outcome        TakerOutcome
	CanceledMakers []OrderId
	MakerSnapshots []MakerSnapshot

	// selfTradeCanceled is set when applySelfTrade discarded the
	// taker's own remainder (STPCancelTaker/STPCancelBoth). Match must
	// route this straight to OutcomeDiscarded: Filled bumps
	// taker.Filled to taker.Qty as bookkeeping so the sweep loop stops,
	// but no fill was ever produced for that quantity.
	selfTradeCanceled bool
}

// Matcher executes the price-time-priority matching algorithm against
// one OrderBook. It holds no state of its own between calls; all
// mutation happens on the *OrderBook and *IndexMap passed in.
type Matcher struct {
	STP SelfTradePolicy
}

// NewMatcher constructs a Matcher using the given self-trade policy.
func NewMatcher(stp SelfTradePolicy) *Matcher {
	return &Matcher{STP: stp}
}

// eligible reports whether a taker (side, limitPrice, isMarket) may
// cross a resting level at levelPrice.
func eligible(side Side, isMarket bool, limitPrice, levelPrice int64) bool {
	if isMarket {
		return true
	}
	if side == Bid {
		return limitPrice >= levelPrice
	}
	return limitPrice <= levelPrice
}

func opposite(s Side) Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// availableLiquidity sums remaining quantity across all levels the
// taker could legally cross, without mutating the book. Used for the
// FOK dry-run (spec §4.4).
func availableLiquidity(book *OrderBook, taker *Order) int64 {
	opp := book.halfBook(opposite(taker.Side))
	isMarket := taker.Type == Market
	var total int64
	opp.WalkFromBest(func(lvl *PriceLevel) bool {
		if !eligible(taker.Side, isMarket, taker.Price, lvl.Price) {
			return false
		}
		total += lvl.TotalQty
		return total < taker.Qty
	})
	return total
}

// Match executes the full matching algorithm for a taker order
// against book, mutating book and idx in place, and returns the
// resulting TradeReport. The taker order itself is never inserted
// into the book by Match; callers (OrderBook.Place) decide whether to
// rest the remainder based on Outcome.
func (m *Matcher) Match(book *OrderBook, idx *IndexMap, taker *Order) *TradeReport {
	rep := &TradeReport{}

	if taker.Type == Market && taker.TIF == GTC {
		rep.Outcome = TakerOutcome{Kind: OutcomeRejected, Reason: RejectMarketGTC}
		return rep
	}

	if taker.TIF == FOK {
		available := availableLiquidity(book, taker)
		if available < taker.Qty {
			rep.Outcome = TakerOutcome{Kind: OutcomeRejected, Reason: RejectFokUnfillable}
			return rep
		}
	}

	m.sweep(book, idx, taker, rep)

	switch {
	case rep.selfTradeCanceled:
		rep.Outcome = TakerOutcome{Kind: OutcomeDiscarded}
	case taker.Remaining() == 0:
		rep.Outcome = TakerOutcome{Kind: OutcomeFilled}
	case taker.TIF == GTC:
		rep.Outcome = TakerOutcome{Kind: OutcomePartiallyRested}
	default: // IOC, FOK (FOK only reaches here fully filled per dry-run, but guard anyway), Market
		rep.Outcome = TakerOutcome{Kind: OutcomeDiscarded}
	}
	return rep
}

// sweep consumes resting liquidity opposite taker.Side in matching
// order (best to worst level, head to tail within a level) until the
// taker is filled or no further eligible liquidity exists.
func (m *Matcher) sweep(book *OrderBook, idx *IndexMap, taker *Order, rep *TradeReport) {
	opp := book.halfBook(opposite(taker.Side))
	isMarket := taker.Type == Market

	for taker.Remaining() > 0 {
		best := opp.Best()
		if best == nil {
			return
		}
		if !eligible(taker.Side, isMarket, taker.Price, best.Price) {
			return
		}

		maker := best.Head()

		if m.STP != STPAllow && maker.AccountRef == taker.AccountRef {
			if m.applySelfTrade(book, idx, opp, best, maker, taker, rep) {
				return // taker's own remainder was canceled; sweep stops
			}
			continue // maker was canceled (or policy is a no-op here); retry this level
		}

		fillQty := min64(taker.Remaining(), maker.Remaining())

		before := *maker
		makerIndex := OrderIndex{Side: opp.side, Price: best.Price, Memo: maker.Memo}

		taker.Filled += fillQty
		maker.Filled += fillQty
		best.TotalQty -= fillQty

		makerFullyFilled := maker.Remaining() == 0
		rep.MakerSnapshots = append(rep.MakerSnapshots, MakerSnapshot{
			Order: before, Index: makerIndex, WasRemoved: makerFullyFilled,
		})
		rep.Fills = append(rep.Fills, Fill{
			MakerOrderId:     maker.ID,
			TakerOrderId:     taker.ID,
			Price:            maker.Price,
			Quantity:         fillQty,
			MakerFullyFilled: makerFullyFilled,
		})

		if makerFullyFilled {
			best.PopHead()
			idx.Delete(maker.ID)
			opp.dropIfEmptyBest()
		}
	}
}

// applySelfTrade enforces m.STP for one colliding maker/taker pair.
// It returns true if the taker's own remainder was canceled (the
// sweep must stop), false if only the maker was removed (the sweep
// should retry the same level).
func (m *Matcher) applySelfTrade(
	book *OrderBook, idx *IndexMap, opp *HalfBook, lvl *PriceLevel, maker, taker *Order, rep *TradeReport,
) bool {
	snapshot := func() MakerSnapshot {
		return MakerSnapshot{Order: *maker, Index: OrderIndex{Side: opp.side, Price: lvl.Price, Memo: maker.Memo}, WasRemoved: true}
	}

	switch m.STP {
	case STPCancelTaker:
		taker.Filled = taker.Qty
		rep.selfTradeCanceled = true
		return true
	case STPCancelMaker:
		rep.MakerSnapshots = append(rep.MakerSnapshots, snapshot())
		lvl.PopHead()
		idx.Delete(maker.ID)
		opp.dropIfEmptyBest()
		rep.CanceledMakers = append(rep.CanceledMakers, maker.ID)
		return false
	case STPCancelBoth:
		rep.MakerSnapshots = append(rep.MakerSnapshots, snapshot())
		lvl.PopHead()
		idx.Delete(maker.ID)
		opp.dropIfEmptyBest()
		rep.CanceledMakers = append(rep.CanceledMakers, maker.ID)
		taker.Filled = taker.Qty
		rep.selfTradeCanceled = true
		return true
	default: // STPAllow never reaches here
		return false
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
