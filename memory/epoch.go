package memory

import "sync/atomic"

// GlobalEpoch is advanced once per reclaim tick; it never decreases.
var GlobalEpoch atomic.Uint64

const inactiveEpoch = ^uint64(0)

// ReaderEpoch is held by a concurrent snapshot reader (package
// snapshot). Enter/Exit bracket one read-only walk of the book so the
// reclaimer can tell whether it is still safe to reuse an object
// retired before the walk began.
type ReaderEpoch struct {
	epoch atomic.Uint64
}

// Enter records the epoch a read section started at.
func (r *ReaderEpoch) Enter() { r.epoch.Store(GlobalEpoch.Load()) }

// Exit marks the reader as idle, so it no longer blocks reclamation.
func (r *ReaderEpoch) Exit() { r.epoch.Store(inactiveEpoch) }

// Value returns the reader's currently recorded epoch.
func (r *ReaderEpoch) Value() uint64 { return r.epoch.Load() }

// ReclaimablePool is the minimal, type-erased interface
// AdvanceEpochAndReclaim needs to hand a retired object back to its pool.
type ReclaimablePool interface {
	PutAny(any)
}

// AdvanceEpochAndReclaim advances GlobalEpoch and drains ring,
// returning each retired object to pool once every given reader's
// recorded epoch is past the epoch active when that object was
// retired — a reader that entered after the retirement could never
// have observed it, regardless of what other readers are doing.
// Objects are retired (and thus stamped) in non-decreasing epoch
// order, so the first one found unsafe means every object behind it
// in the ring is unsafe too; reclamation stops there rather than
// scanning the rest.
func AdvanceEpochAndReclaim(ring *RetireRing, pool ReclaimablePool, readers ...*ReaderEpoch) {
	GlobalEpoch.Add(1)
	safeBelow := minActiveReaderEpoch(readers...)

	for {
		entry, ok := ring.Dequeue()
		if !ok {
			return
		}
		if entry.Epoch < safeBelow {
			pool.PutAny(entry.Value)
			continue
		}
		_ = ring.enqueueEntry(entry)
		return
	}
}

func minActiveReaderEpoch(readers ...*ReaderEpoch) uint64 {
	min := inactiveEpoch
	for _, r := range readers {
		if r == nil {
			continue
		}
		if v := r.Value(); v < min {
			min = v
		}
	}
	return min
}
