package snapshot

import (
	"os"
	"testing"

	"clobengine/orderbook"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func restingOrder(id uuid.UUID, side orderbook.Side, price, qty int64) *orderbook.Order {
	return &orderbook.Order{ID: id, Side: side, Type: orderbook.Limit, Price: price, Qty: qty, TIF: orderbook.GTC}
}

func TestWalkCapturesRestingOrdersBothSides(t *testing.T) {
	book := orderbook.NewOrderBook(orderbook.STPAllow)
	idx := orderbook.NewIndexMap()

	bidId, askId := uuid.New(), uuid.New()
	rep := book.Place(idx, restingOrder(bidId, orderbook.Bid, 100, 5))
	require.NotNil(t, rep)
	rep = book.Place(idx, restingOrder(askId, orderbook.Ask, 200, 3))
	require.NotNil(t, rep)

	snap := NewReader().Walk("BTC-USD", 2, book)
	require.Equal(t, "BTC-USD", snap.Instrument)
	require.Equal(t, uint64(2), snap.Seq)
	require.Len(t, snap.Orders, 2)

	var sawBid, sawAsk bool
	for _, o := range snap.Orders {
		if o.ID == bidId {
			sawBid = true
			require.Equal(t, int64(100), o.Price)
			require.Equal(t, int64(5), o.Qty)
		}
		if o.ID == askId {
			sawAsk = true
			require.Equal(t, int64(200), o.Price)
		}
	}
	require.True(t, sawBid)
	require.True(t, sawAsk)
}

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := Snapshot{Instrument: "BTC-USD", Seq: 7, Orders: []OrderEntry{
		{ID: uuid.New(), Side: orderbook.Bid, Price: 100, Qty: 5},
	}}

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(snap))

	loaded, ok, err := Load(dir, "BTC-USD")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snap.Seq, loaded.Seq)
	require.Len(t, loaded.Orders, 1)
	require.Equal(t, snap.Orders[0].ID, loaded.Orders[0].ID)
}

func TestLoadMissingSnapshotReturnsNotOk(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := Load(dir, "NO-SUCH-INSTRUMENT")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRestorePreservesTimePriorityWithinLevel(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	snap := Snapshot{
		Instrument: "BTC-USD",
		Seq:        3,
		Orders: []OrderEntry{
			{ID: second, Side: orderbook.Bid, Price: 100, Qty: 2, Memo: 2},
			{ID: first, Side: orderbook.Bid, Price: 100, Qty: 3, Memo: 1},
		},
	}

	book := orderbook.NewOrderBook(orderbook.STPAllow)
	idx := orderbook.NewIndexMap()
	Restore(book, idx, snap)

	require.Equal(t, int64(100), book.BestBid())
	loc, ok := idx.Get(first)
	require.True(t, ok)
	require.Equal(t, uint64(1), loc.Memo)

	lvl, _, found := book.Bids.Locate(100)
	require.True(t, found)
	require.Equal(t, first, lvl.Head().ID)
	require.Equal(t, second, lvl.Head().Next().ID)
}

func TestWriterMkdirAllCreatesDir(t *testing.T) {
	dir := t.TempDir()
	nested := dir + "/nested/dir"
	w := &Writer{Dir: nested}
	require.NoError(t, w.Write(Snapshot{Instrument: "X"}))

	_, err := os.Stat(nested)
	require.NoError(t, err)
}
