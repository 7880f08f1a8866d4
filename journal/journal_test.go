package journal

import (
	"testing"

	"clobengine/orderbook"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newOrder(side orderbook.Side, otype orderbook.OrderType, price, qty int64, tif orderbook.TimeInForce, seq uint64) *orderbook.Order {
	return &orderbook.Order{ID: uuid.New(), Side: side, Type: otype, Price: price, Qty: qty, TIF: tif, Seq: seq}
}

// place wraps OrderBook.Place, derives its InverseOp, and appends both
// to j, mirroring what the engine's apply step does per command.
func place(t *testing.T, j *Journal, book *orderbook.OrderBook, idx *orderbook.IndexMap, o *orderbook.Order, seq uint64) *orderbook.TradeReport {
	rep := book.Place(idx, o)
	inv := DeriveForPlace(o, rep.MakerSnapshots, rep)
	require.NoError(t, j.Append(Entry{Seq: seq, CommandTag: TagPlaceOrder, Inverse: inv}))
	return rep
}

type levelSnapshot struct {
	price int64
	qty   int64
}

func snapshotSide(h *orderbook.HalfBook) []levelSnapshot {
	var out []levelSnapshot
	h.WalkAscending(func(lvl *orderbook.PriceLevel) bool {
		out = append(out, levelSnapshot{lvl.Price, lvl.TotalQty})
		return true
	})
	return out
}

func TestRewindRestoresExactPriorState(t *testing.T) {
	book := orderbook.NewOrderBook(orderbook.STPAllow)
	idx := orderbook.NewIndexMap()
	j, err := Open(Config{})
	require.NoError(t, err)

	a := newOrder(orderbook.Bid, orderbook.Limit, 100, 5, orderbook.GTC, 1)
	place(t, j, book, idx, a, 1)

	b := newOrder(orderbook.Bid, orderbook.Limit, 100, 3, orderbook.GTC, 2)
	place(t, j, book, idx, b, 2)

	beforeThird := snapshotSide(book.Bids)

	c := newOrder(orderbook.Ask, orderbook.Limit, 100, 4, orderbook.IOC, 3)
	rep := place(t, j, book, idx, c, 3)
	require.Equal(t, orderbook.OutcomeFilled, rep.Outcome.Kind)
	require.Len(t, rep.Fills, 1)
	require.Equal(t, int64(4), rep.Fills[0].Quantity)

	afterThird := snapshotSide(book.Bids)
	require.NotEqual(t, beforeThird, afterThird)

	j.Rewind(2, book, idx)

	require.Equal(t, beforeThird, snapshotSide(book.Bids))
	require.Equal(t, uint64(2), j.LastSeq())

	aLoc, ok := idx.Get(a.ID)
	require.True(t, ok)
	require.Equal(t, int64(100), aLoc.Price)
	bLoc, ok := idx.Get(b.ID)
	require.True(t, ok)
	require.Equal(t, int64(100), bLoc.Price)
	_, ok = idx.Get(c.ID)
	require.False(t, ok)
}

func TestRewindAfterFullyFilledMakerReinsertsIt(t *testing.T) {
	book := orderbook.NewOrderBook(orderbook.STPAllow)
	idx := orderbook.NewIndexMap()
	j, err := Open(Config{})
	require.NoError(t, err)

	maker := newOrder(orderbook.Ask, orderbook.Limit, 100, 5, orderbook.GTC, 1)
	place(t, j, book, idx, maker, 1)

	taker := newOrder(orderbook.Bid, orderbook.Limit, 100, 5, orderbook.GTC, 2)
	rep := place(t, j, book, idx, taker, 2)
	require.Equal(t, orderbook.OutcomeFilled, rep.Outcome.Kind)
	require.Equal(t, 0, book.Asks.Depth())

	j.Rewind(1, book, idx)

	require.Equal(t, 1, book.Asks.Depth())
	lvl, _, found := book.Asks.Locate(100)
	require.True(t, found)
	require.Equal(t, int64(5), lvl.TotalQty)
	_, ok := idx.Get(maker.ID)
	require.True(t, ok)
	_, ok = idx.Get(taker.ID)
	require.False(t, ok)
}

func TestRewindQuantityAmendRestoresInPlaceWithoutReordering(t *testing.T) {
	book := orderbook.NewOrderBook(orderbook.STPAllow)
	idx := orderbook.NewIndexMap()
	j, err := Open(Config{})
	require.NoError(t, err)

	first := newOrder(orderbook.Bid, orderbook.Limit, 100, 5, orderbook.GTC, 1)
	place(t, j, book, idx, first, 1)
	second := newOrder(orderbook.Bid, orderbook.Limit, 100, 3, orderbook.GTC, 2)
	place(t, j, book, idx, second, 2)

	loc, ok := idx.Get(first.ID)
	require.True(t, ok)
	beforeAmend := *first

	newQty := int64(9)
	_, err = book.Amend(idx, first.ID, nil, &newQty)
	require.NoError(t, err)
	require.NoError(t, j.Append(Entry{Seq: 3, CommandTag: TagAmendOrder, Inverse: DeriveForAmend(beforeAmend, loc)}))

	lvl, _, found := book.Bids.Locate(100)
	require.True(t, found)
	require.Equal(t, int64(12), lvl.TotalQty) // 9 + 3

	j.Rewind(2, book, idx)

	lvl, _, found = book.Bids.Locate(100)
	require.True(t, found)
	require.Equal(t, int64(8), lvl.TotalQty) // 5 + 3, order restored

	// Time priority preserved: first is still head, second still tail.
	require.Equal(t, first.ID, lvl.Head().ID)
	require.Equal(t, second.ID, lvl.Head().Next().ID)
	require.Equal(t, int64(5), lvl.Head().Remaining())
}

// Property P4: rewinding to k after applying [0..n] yields a book
// identical to applying only [0..k].
func TestPrefixReplayEquivalence(t *testing.T) {
	apply := func(n int) (*orderbook.OrderBook, *orderbook.IndexMap) {
		book := orderbook.NewOrderBook(orderbook.STPAllow)
		idx := orderbook.NewIndexMap()
		prices := []int64{100, 101, 99, 100, 102}
		sides := []orderbook.Side{orderbook.Bid, orderbook.Ask, orderbook.Bid, orderbook.Ask, orderbook.Bid}
		for i := 0; i < n; i++ {
			o := newOrder(sides[i], orderbook.Limit, prices[i], int64(i+1), orderbook.GTC, uint64(i+1))
			book.Place(idx, o)
		}
		return book, idx
	}

	direct, _ := apply(3)

	full := orderbook.NewOrderBook(orderbook.STPAllow)
	idx := orderbook.NewIndexMap()
	j, err := Open(Config{})
	require.NoError(t, err)
	prices := []int64{100, 101, 99, 100, 102}
	sides := []orderbook.Side{orderbook.Bid, orderbook.Ask, orderbook.Bid, orderbook.Ask, orderbook.Bid}
	for i := 0; i < 5; i++ {
		o := newOrder(sides[i], orderbook.Limit, prices[i], int64(i+1), orderbook.GTC, uint64(i+1))
		place(t, j, full, idx, o, uint64(i+1))
	}

	j.Rewind(3, full, idx)

	require.Equal(t, snapshotSide(direct.Bids), snapshotSide(full.Bids))
	require.Equal(t, snapshotSide(direct.Asks), snapshotSide(full.Asks))
}
