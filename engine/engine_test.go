package engine

import (
	"context"
	"testing"
	"time"

	"clobengine/config"
	"clobengine/journal"
	"clobengine/orderbook"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *ChannelSink) {
	cfg := config.Default()
	cfg.Instruments = []config.Instrument{{Id: "BTC-USD", SelfTradePolicy: "allow"}}
	sink := NewChannelSink(256)
	e := New(cfg, sink)

	j, err := journal.Open(journal.Config{})
	require.NoError(t, err)
	require.NoError(t, e.AttachJournal("BTC-USD", j))
	return e, sink
}

func runEngine(t *testing.T, e *Engine) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	t.Cleanup(cancel)
	return cancel
}

func drainEvents(t *testing.T, sink *ChannelSink, n int) []Event {
	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		select {
		case evt := <-sink.Events():
			out = append(out, evt)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d/%d", i+1, n)
		}
	}
	return out
}

func place(seq uint64, side orderbook.Side, price, qty int64, tif orderbook.TimeInForce, id uuid.UUID) Command {
	return Command{
		Seq: seq, Instrument: "BTC-USD", Kind: CmdPlaceOrder,
		Place: PlaceOrderPayload{OrderId: id, Side: side, Type: orderbook.Limit, Price: price, Quantity: qty, TIF: tif},
	}
}

// Scenario 1: empty-book limit rest.
func TestScenarioEmptyBookLimitRest(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	id := uuid.New()
	require.NoError(t, e.Submit(context.Background(), place(1, orderbook.Bid, 100, 5, orderbook.GTC, id)))

	evts := drainEvents(t, sink, 1)
	require.Equal(t, EvtOrderAccepted, evts[0].Kind)
	require.True(t, evts[0].Rested)
}

// Scenario 2: cross with exact fill.
func TestScenarioCrossExactFill(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	makerId, takerId := uuid.New(), uuid.New()
	require.NoError(t, e.Submit(context.Background(), place(1, orderbook.Ask, 100, 5, orderbook.GTC, makerId)))
	drainEvents(t, sink, 1)

	require.NoError(t, e.Submit(context.Background(), place(2, orderbook.Bid, 100, 5, orderbook.GTC, takerId)))
	evts := drainEvents(t, sink, 2)

	require.Equal(t, EvtOrderAccepted, evts[0].Kind)
	require.False(t, evts[0].Rested)
	require.Equal(t, EvtTrade, evts[1].Kind)
	require.Equal(t, int64(5), evts[1].Quantity)
	require.Equal(t, makerId, evts[1].MakerId)
	require.Equal(t, takerId, evts[1].TakerId)
}

// Scenario 4: FOK unfillable.
func TestScenarioFokUnfillableRejects(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	require.NoError(t, e.Submit(context.Background(), place(1, orderbook.Ask, 100, 3, orderbook.GTC, uuid.New())))
	drainEvents(t, sink, 1)

	require.NoError(t, e.Submit(context.Background(), place(2, orderbook.Bid, 100, 5, orderbook.FOK, uuid.New())))
	evts := drainEvents(t, sink, 1)
	require.Equal(t, EvtOrderRejected, evts[0].Kind)
	require.Equal(t, orderbook.RejectFokUnfillable, evts[0].Reason)
}

// Property P6: IOC never rests.
func TestIOCNeverRests(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	require.NoError(t, e.Submit(context.Background(), place(1, orderbook.Bid, 100, 5, orderbook.IOC, uuid.New())))
	evts := drainEvents(t, sink, 1)
	require.Equal(t, EvtOrderAccepted, evts[0].Kind)
	require.False(t, evts[0].Rested)
}

func TestCancelResting(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	id := uuid.New()
	require.NoError(t, e.Submit(context.Background(), place(1, orderbook.Bid, 100, 5, orderbook.GTC, id)))
	drainEvents(t, sink, 1)

	require.NoError(t, e.Submit(context.Background(), Command{
		Seq: 2, Instrument: "BTC-USD", Kind: CmdCancelOrder, Cancel: CancelOrderPayload{OrderId: id},
	}))
	evts := drainEvents(t, sink, 1)
	require.Equal(t, EvtOrderCanceled, evts[0].Kind)
}

func TestSuspendRejectsBusinessCommands(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	require.NoError(t, e.Submit(context.Background(), Command{
		Seq: 1, Instrument: "BTC-USD", Kind: CmdControl, Control: ControlPayload{Kind: CtrlSuspend},
	}))
	drainEvents(t, sink, 1)

	require.NoError(t, e.Submit(context.Background(), place(2, orderbook.Bid, 100, 5, orderbook.GTC, uuid.New())))
	evts := drainEvents(t, sink, 1)
	require.Equal(t, EvtOrderRejected, evts[0].Kind)
	require.Equal(t, orderbook.RejectEngineSuspended, evts[0].Reason)
}

// Scenario 6 / property P4: rewind restores exact prior book state.
func TestRewindControlCommand(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	first, second, third := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, e.Submit(context.Background(), place(1, orderbook.Ask, 100, 2, orderbook.GTC, first)))
	drainEvents(t, sink, 1)
	require.NoError(t, e.Submit(context.Background(), place(2, orderbook.Ask, 100, 2, orderbook.GTC, second)))
	drainEvents(t, sink, 1)
	require.NoError(t, e.Submit(context.Background(), place(3, orderbook.Bid, 100, 3, orderbook.IOC, third)))
	drainEvents(t, sink, 3) // accepted + 2 trades

	require.NoError(t, e.Submit(context.Background(), Command{
		Seq: 4, Instrument: "BTC-USD", Kind: CmdControl, Control: ControlPayload{Kind: CtrlRewind, ToSeq: 2},
	}))
	evts := drainEvents(t, sink, 1)
	require.Equal(t, EvtRewindComplete, evts[0].Kind)

	bs := e.books["BTC-USD"]
	lvl, _, found := bs.book.Asks.Locate(100)
	require.True(t, found)
	require.Equal(t, int64(4), lvl.TotalQty)
	_, ok := bs.idx.Get(third)
	require.False(t, ok)
}

func TestPoisonOnAmendInconsistentIndexSuspendsEngine(t *testing.T) {
	e, sink := newTestEngine(t)
	runEngine(t, e)

	id := uuid.New()
	require.NoError(t, e.Submit(context.Background(), place(1, orderbook.Bid, 100, 5, orderbook.GTC, id)))
	drainEvents(t, sink, 1)

	// Corrupt the index to point at a memo that no longer exists,
	// forcing the amend path's consistency panic (spec §4.6 poison).
	bs := e.books["BTC-USD"]
	bs.idx.Put(id, orderbook.OrderIndex{Side: orderbook.Bid, Price: 100, Memo: 999})

	newQty := int64(1)
	require.NoError(t, e.Submit(context.Background(), Command{
		Seq: 2, Instrument: "BTC-USD", Kind: CmdAmendOrder,
		Amend: AmendOrderPayload{OrderId: id, NewQuantity: &newQty},
	}))

	evts := drainEvents(t, sink, 3) // Recovering, PoisonDetected, Suspended
	require.Equal(t, EvtEngineStateChanged, evts[0].Kind)
	require.Equal(t, Recovering, evts[0].State)
	require.Equal(t, EvtPoisonDetected, evts[1].Kind)
	require.Equal(t, uint64(2), evts[1].Seq)
	require.Equal(t, EvtEngineStateChanged, evts[2].Kind)
	require.Equal(t, Suspended, evts[2].State)
	require.Equal(t, Suspended, e.State())
}

func TestShutdownRejectsQueuedCommands(t *testing.T) {
	e, sink := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, e.Submit(ctx, Command{
		Seq: 1, Instrument: "BTC-USD", Kind: CmdControl, Control: ControlPayload{Kind: CtrlShutdown},
	}))
	require.NoError(t, e.Submit(ctx, place(2, orderbook.Bid, 100, 5, orderbook.GTC, uuid.New())))

	e.Run(ctx)

	evts := drainEvents(t, sink, 2) // EngineStateChanged(Stopped), OrderRejected
	require.Equal(t, EvtEngineStateChanged, evts[0].Kind)
	require.Equal(t, Stopped, evts[0].State)
	require.Equal(t, EvtOrderRejected, evts[1].Kind)
	require.Equal(t, orderbook.RejectEngineStopped, evts[1].Reason)

	require.Equal(t, ErrEngineStopped, e.Submit(context.Background(), place(3, orderbook.Bid, 100, 1, orderbook.GTC, uuid.New())))
}
