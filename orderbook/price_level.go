package orderbook

import "fmt"

// PriceLevel is the FIFO queue of resting orders at one price. The
// head is the earliest arrival (time-priority head); memoSeq never
// decreases for the lifetime of the level, so a reinserted order with
// a previously assigned memo preserves its original slot ordering
// relative to any still-resting sibling (needed by journal's rewind).
type PriceLevel struct {
	Price int64

	head *Order
	tail *Order

	memoSeq  uint64
	count    int
	TotalQty int64
}

// NewPriceLevel constructs an empty level at the given price.
func NewPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{Price: price}
}

// Push appends an order to the time-priority tail, assigns its memo,
// and returns the assigned memo.
func (lvl *PriceLevel) Push(o *Order) uint64 {
	lvl.memoSeq++
	o.Memo = lvl.memoSeq
	lvl.append(o)
	return o.Memo
}

// ReinsertAtMemo re-attaches a previously removed order without
// minting a new memo, placing it after every resting order with a
// smaller memo and before every one with a larger memo, so rewind
// (journal's reinstate) restores exact time priority. memoSeq is
// advanced if needed so future Push calls never collide with a
// reinstated memo.
func (lvl *PriceLevel) ReinsertAtMemo(o *Order) {
	if o.Memo > lvl.memoSeq {
		lvl.memoSeq = o.Memo
	}
	after := lvl.tail
	for after != nil && after.Memo > o.Memo {
		after = after.prev
	}
	if after == lvl.tail {
		lvl.append(o)
		return
	}
	o.prev = after
	if after == nil {
		o.next = lvl.head
		lvl.head = o
	} else {
		o.next = after.next
		after.next = o
	}
	o.next.prev = o
	lvl.count++
	lvl.TotalQty += o.Remaining()
}

func (lvl *PriceLevel) append(o *Order) {
	o.next, o.prev = nil, nil
	if lvl.tail == nil {
		lvl.head = o
	} else {
		lvl.tail.next = o
		o.prev = lvl.tail
	}
	lvl.tail = o
	lvl.count++
	lvl.TotalQty += o.Remaining()
}

// Head returns the earliest order resting at this level, or nil.
func (lvl *PriceLevel) Head() *Order { return lvl.head }

// PopHead removes and returns the head order (used when it is fully filled).
func (lvl *PriceLevel) PopHead() *Order {
	o := lvl.head
	if o == nil {
		return nil
	}
	lvl.unlink(o)
	return o
}

// RemoveByMemo does a linear O(k) scan for the order with the given
// memo and unlinks it. Cancels are rare relative to top-of-book
// places, and k is small in practice, so a secondary per-level index
// would double memory and hurt cache locality for no measurable gain.
func (lvl *PriceLevel) RemoveByMemo(memo uint64) (*Order, bool) {
	for o := lvl.head; o != nil; o = o.next {
		if o.Memo == memo {
			lvl.unlink(o)
			return o, true
		}
	}
	return nil, false
}

// RestoreOrderState resets Qty and Filled of the still-resting order
// at memo, without touching its position in the queue, and adjusts
// TotalQty by the resulting change in remaining quantity. Used by
// rewind (journal.Apply) to undo a partial fill or an in-place
// quantity amend against an order that was never unlinked from the
// level, so its time priority relative to siblings is left untouched.
func (lvl *PriceLevel) RestoreOrderState(memo uint64, qty, filled int64) bool {
	for o := lvl.head; o != nil; o = o.next {
		if o.Memo == memo {
			before := o.Remaining()
			o.Qty, o.Filled = qty, filled
			lvl.TotalQty += o.Remaining() - before
			return true
		}
	}
	return false
}

func (lvl *PriceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		lvl.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		lvl.tail = o.prev
	}
	o.next, o.prev = nil, nil
	lvl.count--
	lvl.TotalQty -= o.Remaining()
}

// IsEmpty reports whether the level has no resting orders.
func (lvl *PriceLevel) IsEmpty() bool { return lvl.head == nil }

// Count returns the number of resting orders at this level.
func (lvl *PriceLevel) Count() int { return lvl.count }

func (lvl *PriceLevel) String() string {
	return fmt.Sprintf("PriceLevel{price=%d orders=%d qty=%d}", lvl.Price, lvl.count, lvl.TotalQty)
}
