package snapshot

import (
	"time"

	"clobengine/memory"
	"clobengine/orderbook"
)

// OrderEntry is one resting order as captured by a Walk, enough to
// reconstruct it exactly on a warm restart (including its Memo, so
// time priority survives the snapshot/reload round trip).
type OrderEntry struct {
	ID         orderbook.OrderId
	Side       orderbook.Side
	Type       orderbook.OrderType
	Price      int64
	Qty        int64
	Filled     int64
	TIF        orderbook.TimeInForce
	AccountRef uint64
	Seq        uint64
	Memo       uint64
}

// Snapshot is a consistent point-in-time dump of one instrument's book.
type Snapshot struct {
	Instrument string
	Seq        uint64 // the last command seq reflected in this dump
	Created    time.Time
	Orders     []OrderEntry
}

// Reader performs epoch-gated read-only walks of a book that is
// concurrently mutated by the engine's single writer thread. It holds
// a memory.ReaderEpoch so the engine's retire-ring reclaimer can tell
// whether this reader might still observe an order retired mid-walk
// (spec §6's "read-only snapshot commands" extension, memory-safety
// mechanics per §4.7).
type Reader struct {
	epoch memory.ReaderEpoch
}

// NewReader constructs an idle Reader.
func NewReader() *Reader { return &Reader{} }

// Epoch exposes the underlying memory.ReaderEpoch so the engine can
// include this reader in the set passed to memory.AdvanceEpochAndReclaim.
func (r *Reader) Epoch() *memory.ReaderEpoch { return &r.epoch }

// Walk takes a consistent snapshot of instrument's book as of seq. The
// caller supplies seq (normally the engine's last-applied Command.Seq
// at the moment it grants read access) since the reader itself cannot
// observe the engine's sequence counter.
func (r *Reader) Walk(instrument string, seq uint64, book *orderbook.OrderBook) Snapshot {
	r.epoch.Enter()
	defer r.epoch.Exit()

	snap := Snapshot{Instrument: instrument, Seq: seq, Created: time.Now()}
	walkHalf := func(hb *orderbook.HalfBook) {
		hb.WalkAscending(func(lvl *orderbook.PriceLevel) bool {
			for o := lvl.Head(); o != nil; o = o.Next() {
				snap.Orders = append(snap.Orders, OrderEntry{
					ID:         o.ID,
					Side:       o.Side,
					Type:       o.Type,
					Price:      o.Price,
					Qty:        o.Qty,
					Filled:     o.Filled,
					TIF:        o.TIF,
					AccountRef: o.AccountRef,
					Seq:        o.Seq,
					Memo:       o.Memo,
				})
			}
			return true
		})
	}
	walkHalf(book.Bids)
	walkHalf(book.Asks)
	return snap
}
