package orderbook

import "sort"

// HalfBook is a sequence of price levels sorted ascending by price
// (spec §3/§4.2). The bid side's best is the last element; the ask
// side's best is the first; this unified ordering is what lets both
// sides share one binary-search implementation.
type HalfBook struct {
	side   Side
	levels []*PriceLevel
}

// NewHalfBook constructs an empty half-book for the given side.
func NewHalfBook(side Side) *HalfBook {
	return &HalfBook{side: side}
}

// Locate does a binary search for price, returning (level, true) if
// present, or (nil, false) with pos set to the insertion index that
// keeps levels sorted ascending.
func (h *HalfBook) Locate(price int64) (lvl *PriceLevel, pos int, found bool) {
	pos = sort.Search(len(h.levels), func(i int) bool {
		return h.levels[i].Price >= price
	})
	if pos < len(h.levels) && h.levels[pos].Price == price {
		return h.levels[pos], pos, true
	}
	return nil, pos, false
}

// GetOrCreate returns the level at price, creating and inserting an
// empty one in sorted position if it doesn't exist yet (I1).
func (h *HalfBook) GetOrCreate(price int64) *PriceLevel {
	lvl, pos, found := h.Locate(price)
	if found {
		return lvl
	}
	lvl = NewPriceLevel(price)
	h.insertAt(pos, lvl)
	return lvl
}

func (h *HalfBook) insertAt(pos int, lvl *PriceLevel) {
	h.levels = append(h.levels, nil)
	copy(h.levels[pos+1:], h.levels[pos:])
	h.levels[pos] = lvl
}

// RemoveEmpty drops the level at pos if it has become empty,
// preserving I1 ("no empty levels exist").
func (h *HalfBook) RemoveEmpty(pos int) {
	if pos < 0 || pos >= len(h.levels) || !h.levels[pos].IsEmpty() {
		return
	}
	h.levels = append(h.levels[:pos], h.levels[pos+1:]...)
}

// Best returns the side-aware best level: last for bids, first for asks.
func (h *HalfBook) Best() *PriceLevel {
	if len(h.levels) == 0 {
		return nil
	}
	if h.side == Bid {
		return h.levels[len(h.levels)-1]
	}
	return h.levels[0]
}

// BestPrice returns the best price, or 0 if the side is empty.
func (h *HalfBook) BestPrice() int64 {
	if b := h.Best(); b != nil {
		return b.Price
	}
	return 0
}

// popBest removes the current best level.
func (h *HalfBook) popBest() {
	if len(h.levels) == 0 {
		return
	}
	if h.side == Bid {
		h.levels = h.levels[:len(h.levels)-1]
	} else {
		h.levels = h.levels[1:]
	}
}

// dropIfEmptyBest removes the best level if it has become empty after
// matching fully drained it; O(1) since it's always at the boundary.
func (h *HalfBook) dropIfEmptyBest() {
	if b := h.Best(); b != nil && b.IsEmpty() {
		h.popBest()
	}
}

// Depth returns the number of non-empty price levels.
func (h *HalfBook) Depth() int { return len(h.levels) }

// WalkFromBest visits levels in matching order for a taker on the
// opposite side: ask levels ascending (cheapest first) when h is the
// ask side, bid levels descending (highest first) when h is the bid
// side. fn returning false stops the walk early.
func (h *HalfBook) WalkFromBest(fn func(*PriceLevel) bool) {
	if h.side == Ask {
		for i := 0; i < len(h.levels); i++ {
			if !fn(h.levels[i]) {
				return
			}
		}
		return
	}
	for i := len(h.levels) - 1; i >= 0; i-- {
		if !fn(h.levels[i]) {
			return
		}
	}
}

// WalkAscending visits levels from lowest to highest price (book display / snapshots).
func (h *HalfBook) WalkAscending(fn func(*PriceLevel) bool) {
	for i := 0; i < len(h.levels); i++ {
		if !fn(h.levels[i]) {
			return
		}
	}
}
