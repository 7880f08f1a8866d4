package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clobengine/orderbook"
)

// Writer persists Snapshots to a directory as gob-encoded files, one
// per instrument, overwritten atomically on every call (teacher's
// service.StartSnapshotJob ticks a periodic Writer.Write the same way,
// just against a simpler Snapshot shape).
type Writer struct {
	Dir string
}

// Write gob-encodes snap and atomically replaces the instrument's
// snapshot file, writing to a temp file first so a crash mid-write
// never corrupts the previous, still-valid snapshot.
func (w *Writer) Write(snap Snapshot) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	final := w.path(snap.Instrument)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("snapshot: write temp: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	return nil
}

func (w *Writer) path(instrument string) string {
	return filepath.Join(w.Dir, sanitize(instrument)+".snap")
}

func sanitize(instrument string) string {
	return strings.ReplaceAll(instrument, string(filepath.Separator), "_")
}

// Load reads back the most recently written snapshot for instrument,
// or ok=false if none exists yet (a cold start with no prior warm
// state, in which case the caller must replay the full journal).
func Load(dir, instrument string) (snap Snapshot, ok bool, err error) {
	path := (&Writer{Dir: dir}).path(instrument)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	return snap, true, nil
}

// Restore rebuilds book and idx from snap, bypassing the matcher
// entirely: every order in a snapshot has already been matched, so
// Restore only needs to reinsert resting orders with their original
// time priority, not re-run price-time matching against them. Orders
// are grouped by price level and replayed in ascending Memo order
// within each level; ReinsertAtMemo places each order by its Memo, so
// FIFO order is kept intact.
func Restore(book *orderbook.OrderBook, idx *orderbook.IndexMap, snap Snapshot) {
	byLevel := make(map[orderbook.Side]map[int64][]OrderEntry)
	for _, e := range snap.Orders {
		levels := byLevel[e.Side]
		if levels == nil {
			levels = make(map[int64][]OrderEntry)
			byLevel[e.Side] = levels
		}
		levels[e.Price] = append(levels[e.Price], e)
	}

	restoreSide := func(side orderbook.Side, hb *orderbook.HalfBook) {
		for price, entries := range byLevel[side] {
			sort.Slice(entries, func(i, j int) bool { return entries[i].Memo < entries[j].Memo })
			lvl := hb.GetOrCreate(price)
			for _, e := range entries {
				o := &orderbook.Order{
					ID:         e.ID,
					Side:       e.Side,
					Type:       e.Type,
					Price:      e.Price,
					Qty:        e.Qty,
					Filled:     e.Filled,
					TIF:        e.TIF,
					AccountRef: e.AccountRef,
					Seq:        e.Seq,
					Memo:       e.Memo,
				}
				lvl.ReinsertAtMemo(o)
				idx.Put(o.ID, orderbook.OrderIndex{Side: side, Price: price, Memo: o.Memo})
			}
		}
	}
	restoreSide(orderbook.Bid, book.Bids)
	restoreSide(orderbook.Ask, book.Asks)
}
