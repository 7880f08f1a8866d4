package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"clobengine/config"
	"clobengine/journal"
	"clobengine/memory"
	"clobengine/orderbook"
)

// ErrEngineStopped is returned by Submit once the engine has reached
// the terminal Stopped state; the caller must not retry on the same
// engine.
var ErrEngineStopped = errors.New("engine: stopped")

// FatalError wraps a journal or event-sink failure (spec §7's Fatal
// class). It is never recovered from within the engine; receiving one
// transitions the engine to Stopped.
type FatalError struct{ Err error }

func (f *FatalError) Error() string { return "engine: fatal: " + f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// bookState bundles one instrument's book, its id->index locator, and
// its journal. The engine owns all three exclusively; nothing outside
// the owner thread ever mutates them.
type bookState struct {
	book    *orderbook.OrderBook
	idx     *orderbook.IndexMap
	journal *journal.Journal
	pool    *memory.OrderPool
}

// Engine is the single-writer actor described in spec §4.6: it owns
// every instrument's OrderBook, consumes Commands off one input
// queue to completion before the next, and emits Events describing
// the effect of each.
type Engine struct {
	books map[string]*bookState
	sink  EventSink
	input chan Command
	state atomic.Uint32

	// replaying suppresses journal appends while a prior on-disk
	// journal is being walked back into memory at startup (the entry
	// being re-applied is already durable; re-appending it would
	// duplicate it at a new seq).
	replaying bool
}

// New constructs an Engine with one OrderBook per configured
// instrument. Every instrument starts with no journal; AttachJournal
// or ReplayInstrument wires one in, and ReplayInstrument should be
// called before Run for any instrument whose journal must be restored
// from disk first.
func New(cfg config.Config, sink EventSink) *Engine {
	e := &Engine{
		books: make(map[string]*bookState, len(cfg.Instruments)),
		sink:  sink,
		input: make(chan Command, cfg.InputQueueDepth),
	}
	retireCap := cfg.MemoryRetireRingCapacity
	if retireCap == 0 {
		retireCap = 1 << 16
	}
	for _, inst := range cfg.Instruments {
		e.books[inst.Id] = &bookState{
			book: orderbook.NewOrderBook(config.ParseSelfTradePolicy(inst.SelfTradePolicy)),
			idx:  orderbook.NewIndexMap(),
			pool: memory.NewOrderPool(retireCap),
		}
	}
	e.state.Store(uint32(Running))
	return e
}

// State returns the engine's current supervisor state. Safe to call
// from any goroutine.
func (e *Engine) State() State { return State(e.state.Load()) }

// InstrumentBook exposes instrumentId's book and its journal's last
// applied seq, for a snapshot.Reader walk run from outside the engine
// thread. The returned *orderbook.OrderBook must only be read, never
// mutated, and only for the duration of one epoch-bracketed walk.
func (e *Engine) InstrumentBook(instrumentId string) (*orderbook.OrderBook, uint64, bool) {
	bs, ok := e.books[instrumentId]
	if !ok {
		return nil, 0, false
	}
	var lastSeq uint64
	if bs.journal != nil {
		lastSeq = bs.journal.LastSeq()
	}
	return bs.book, lastSeq, true
}

// Reclaim advances instrumentId's retire epoch and returns every
// retired order no longer visible to readers back to its pool. Call
// from a dedicated ticker goroutine, never from the engine thread
// itself: memory.RetireRing is single-producer/single-consumer, and
// the engine thread is already the producer (spec §4.7).
func (e *Engine) Reclaim(instrumentId string, readers ...*memory.ReaderEpoch) error {
	bs, ok := e.books[instrumentId]
	if !ok {
		return fmt.Errorf("engine: unknown instrument %q", instrumentId)
	}
	bs.pool.Reclaim(readers...)
	return nil
}

// AttachJournal wires an already-opened (or freshly Open'd in-memory)
// journal for instrumentId. Call before Run; the engine thread is the
// only writer once running.
func (e *Engine) AttachJournal(instrumentId string, j *journal.Journal) error {
	bs, ok := e.books[instrumentId]
	if !ok {
		return fmt.Errorf("engine: unknown instrument %q", instrumentId)
	}
	bs.journal = j
	return nil
}

// ReplayInstrument opens instrumentId's on-disk journal at cfg.Dir (if
// any), replays every persisted entry back into that instrument's
// book by re-executing the forward command it carries, and leaves the
// journal open and ready for live appends. It returns the replayed
// journal's last seq, so the caller can rebase a sequence.Allocator
// without a gap or reuse. Call before Run for each instrument backed
// by a persisted journal.
func (e *Engine) ReplayInstrument(instrumentId string, cfg journal.Config) (uint64, error) {
	bs, ok := e.books[instrumentId]
	if !ok {
		return 0, fmt.Errorf("engine: unknown instrument %q", instrumentId)
	}

	e.replaying = true
	defer func() { e.replaying = false }()

	j, err := journal.OpenWithReplay(cfg, func(entry journal.Entry) error {
		return e.replayEntry(bs, entry)
	})
	if err != nil {
		return 0, err
	}
	bs.journal = j
	return j.LastSeq(), nil
}

func (e *Engine) replayEntry(bs *bookState, entry journal.Entry) error {
	cmd, err := decodeCommand(entry.Payload)
	if err != nil {
		return fmt.Errorf("engine: decode replayed command seq %d: %w", entry.Seq, err)
	}
	switch entry.CommandTag {
	case journal.TagPlaceOrder:
		return e.applyPlaceOrder(cmd, bs)
	case journal.TagCancelOrder:
		return e.applyCancelOrder(cmd, bs)
	case journal.TagAmendOrder:
		return e.applyAmendOrder(cmd, bs)
	case journal.TagControl:
		e.applyControl(cmd)
		return nil
	default:
		return fmt.Errorf("engine: unknown command tag %d at seq %d", entry.CommandTag, entry.Seq)
	}
}

// Submit enqueues cmd for processing. It blocks if the input queue is
// full (spec §5's sole backpressure mechanism) until ctx is canceled.
func (e *Engine) Submit(ctx context.Context, cmd Command) error {
	if e.State() == Stopped {
		return ErrEngineStopped
	}
	select {
	case e.input <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the actor loop: block on the input queue, process exactly one
// command to completion, repeat, until ctx is canceled or a Shutdown
// control command is processed.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-e.input:
			e.dispatch(cmd)
			if e.State() == Stopped {
				e.drainQueue()
				return
			}
		}
	}
}

// drainQueue rejects whatever is still buffered in the input queue
// once the engine has stopped, so producers blocked in Submit (or
// waiting on a response) observe Rejected(Shutdown) rather than
// silence (spec §5).
func (e *Engine) drainQueue() {
	for {
		select {
		case cmd := <-e.input:
			if cmd.Kind != CmdControl {
				e.emitRejected(cmd, orderbook.RejectEngineStopped)
			}
		default:
			return
		}
	}
}

func (e *Engine) dispatch(cmd Command) {
	if cmd.Kind == CmdControl {
		e.applyControl(cmd)
		return
	}

	switch e.State() {
	case Suspended, Recovering:
		e.emitRejected(cmd, orderbook.RejectEngineSuspended)
		return
	case Stopped:
		e.emitRejected(cmd, orderbook.RejectEngineStopped)
		return
	}

	bs, ok := e.books[cmd.Instrument]
	if !ok {
		e.emitRejected(cmd, orderbook.RejectUnknownInstrument)
		return
	}

	var poisoned any
	var fatal error
	func() {
		defer func() {
			if r := recover(); r != nil {
				poisoned = r
			}
		}()
		fatal = e.applyBusiness(cmd, bs)
	}()

	switch {
	case poisoned != nil:
		e.handlePoison(cmd, bs, poisoned)
	case fatal != nil:
		e.handleFatal(cmd, fatal)
	}
}

func (e *Engine) applyBusiness(cmd Command, bs *bookState) error {
	switch cmd.Kind {
	case CmdPlaceOrder:
		return e.applyPlaceOrder(cmd, bs)
	case CmdCancelOrder:
		return e.applyCancelOrder(cmd, bs)
	case CmdAmendOrder:
		return e.applyAmendOrder(cmd, bs)
	default:
		return nil
	}
}

func (e *Engine) applyPlaceOrder(cmd Command, bs *bookState) error {
	p := cmd.Place
	if p.Quantity <= 0 {
		e.emitRejected(cmd, orderbook.RejectZeroQuantity)
		return nil
	}

	o := bs.pool.Get()
	o.ID = p.OrderId
	o.Side = p.Side
	o.Type = p.Type
	o.Price = p.Price
	o.Qty = p.Quantity
	o.TIF = p.TIF
	o.AccountRef = p.AccountRef
	o.Seq = cmd.Seq

	rep := bs.book.Place(bs.idx, o)
	inv := journal.DeriveForPlace(o, rep.MakerSnapshots, rep)
	if err := e.appendJournal(bs, cmd, journal.TagPlaceOrder, inv); err != nil {
		return &FatalError{Err: err}
	}

	e.emitPlaceOutcome(cmd, o, rep)

	// Anything other than a resting remainder means o was never linked
	// into a PriceLevel, so it is safe to hand straight back.
	if rep.Outcome.Kind != orderbook.OutcomePartiallyRested {
		bs.pool.RetireOrder(o)
	}
	return nil
}

func (e *Engine) emitPlaceOutcome(cmd Command, o *orderbook.Order, rep *orderbook.TradeReport) {
	if rep.Outcome.Kind == orderbook.OutcomeRejected {
		e.emit(Event{Kind: EvtOrderRejected, Seq: cmd.Seq, Instrument: cmd.Instrument, OrderId: o.ID, Reason: rep.Outcome.Reason})
		return
	}

	e.emit(Event{
		Kind:       EvtOrderAccepted,
		Seq:        cmd.Seq,
		Instrument: cmd.Instrument,
		OrderId:    o.ID,
		Rested:     rep.Outcome.Kind == orderbook.OutcomePartiallyRested,
		Index:      rep.Outcome.Index,
	})
	for _, f := range rep.Fills {
		e.emit(Event{
			Kind: EvtTrade, Seq: cmd.Seq, Instrument: cmd.Instrument,
			MakerId: f.MakerOrderId, TakerId: f.TakerOrderId, Price: f.Price, Quantity: f.Quantity,
		})
	}
	for _, id := range rep.CanceledMakers {
		e.emit(Event{Kind: EvtOrderCanceled, Seq: cmd.Seq, Instrument: cmd.Instrument, OrderId: id})
	}
}

func (e *Engine) applyCancelOrder(cmd Command, bs *bookState) error {
	id := cmd.Cancel.OrderId
	loc, ok := bs.idx.Get(id)
	if !ok {
		e.emitRejected(cmd, orderbook.RejectOrderNotFound)
		return nil
	}

	removed, err := bs.book.Cancel(bs.idx, id)
	if err != nil {
		e.emitRejected(cmd, rejectReasonOf(err, orderbook.RejectOrderNotFound))
		return nil
	}

	inv := journal.DeriveForCancel(*removed, loc)
	if err := e.appendJournal(bs, cmd, journal.TagCancelOrder, inv); err != nil {
		return &FatalError{Err: err}
	}

	e.emit(Event{Kind: EvtOrderCanceled, Seq: cmd.Seq, Instrument: cmd.Instrument, OrderId: id})
	bs.pool.RetireOrder(removed)
	return nil
}

func (e *Engine) applyAmendOrder(cmd Command, bs *bookState) error {
	id := cmd.Amend.OrderId
	loc, ok := bs.idx.Get(id)
	if !ok {
		e.emitRejected(cmd, orderbook.RejectOrderNotFound)
		return nil
	}
	original, ok := findOrder(bs.book, loc)
	if !ok {
		panic(fmt.Errorf("engine: index inconsistent for order %s at %v", id, loc))
	}
	originalCopy := *original

	res, err := bs.book.Amend(bs.idx, id, cmd.Amend.NewPrice, cmd.Amend.NewQuantity)
	if err != nil {
		e.emitRejected(cmd, rejectReasonOf(err, orderbook.RejectOrderNotFound))
		return nil
	}

	inv := journal.DeriveForAmend(originalCopy, loc)
	if err := e.appendJournal(bs, cmd, journal.TagAmendOrder, inv); err != nil {
		return &FatalError{Err: err}
	}

	e.emit(Event{Kind: EvtOrderAmended, Seq: cmd.Seq, Instrument: cmd.Instrument, OrderId: id, Index: res.Index})
	if res.Trade != nil {
		for _, f := range res.Trade.Fills {
			e.emit(Event{
				Kind: EvtTrade, Seq: cmd.Seq, Instrument: cmd.Instrument,
				MakerId: f.MakerOrderId, TakerId: f.TakerOrderId, Price: f.Price, Quantity: f.Quantity,
			})
		}
		for _, mid := range res.Trade.CanceledMakers {
			e.emit(Event{Kind: EvtOrderCanceled, Seq: cmd.Seq, Instrument: cmd.Instrument, OrderId: mid})
		}
	}
	return nil
}

func (e *Engine) applyControl(cmd Command) {
	switch cmd.Control.Kind {
	case CtrlSuspend:
		e.state.Store(uint32(Suspended))
		e.emit(Event{Kind: EvtEngineStateChanged, Seq: cmd.Seq, Instrument: cmd.Instrument, State: Suspended})
	case CtrlResume:
		e.state.Store(uint32(Running))
		e.emit(Event{Kind: EvtEngineStateChanged, Seq: cmd.Seq, Instrument: cmd.Instrument, State: Running})
	case CtrlRewind:
		bs, ok := e.books[cmd.Instrument]
		if !ok || bs.journal == nil {
			return
		}
		bs.journal.Rewind(cmd.Control.ToSeq, bs.book, bs.idx)
		e.emit(Event{Kind: EvtRewindComplete, Seq: cmd.Seq, Instrument: cmd.Instrument, ToSeq: cmd.Control.ToSeq})
	case CtrlShutdown:
		e.state.Store(uint32(Stopped))
		e.emit(Event{Kind: EvtEngineStateChanged, Seq: cmd.Seq, Instrument: cmd.Instrument, State: Stopped})
	}
}

// handlePoison implements spec §4.6's supervisor path: an internal
// fault during matching rewinds the faulted book to the state before
// the offending command, reports it, and suspends pending an operator
// decision. The offending command is never retried automatically.
func (e *Engine) handlePoison(cmd Command, bs *bookState, cause any) {
	log.Printf("engine: poison at seq %d instrument %s: %v", cmd.Seq, cmd.Instrument, cause)

	e.state.Store(uint32(Recovering))
	e.emit(Event{Kind: EvtEngineStateChanged, Seq: cmd.Seq, Instrument: cmd.Instrument, State: Recovering})

	if bs.journal != nil && cmd.Seq > 0 {
		bs.journal.Rewind(cmd.Seq-1, bs.book, bs.idx)
	}
	e.emit(Event{Kind: EvtPoisonDetected, Seq: cmd.Seq, Instrument: cmd.Instrument, PoisonCommand: cmd})

	e.state.Store(uint32(Suspended))
	e.emit(Event{Kind: EvtEngineStateChanged, Seq: cmd.Seq, Instrument: cmd.Instrument, State: Suspended})
}

func (e *Engine) handleFatal(cmd Command, err error) {
	log.Printf("engine: fatal at seq %d instrument %s: %v", cmd.Seq, cmd.Instrument, err)
	e.state.Store(uint32(Stopped))
	e.emit(Event{Kind: EvtEngineStateChanged, Seq: cmd.Seq, Instrument: cmd.Instrument, State: Stopped})
}

func (e *Engine) appendJournal(bs *bookState, cmd Command, tag journal.CommandTag, inv journal.InverseOp) error {
	if bs.journal == nil || e.replaying {
		return nil
	}
	payload, err := encodeCommand(cmd)
	if err != nil {
		return err
	}
	return bs.journal.Append(journal.Entry{Seq: cmd.Seq, CommandTag: tag, Payload: payload, Inverse: inv})
}

func (e *Engine) emit(evt Event) {
	if e.sink != nil {
		e.sink.Publish(evt)
	}
}

func (e *Engine) emitRejected(cmd Command, reason orderbook.RejectReason) {
	e.emit(Event{Kind: EvtOrderRejected, Seq: cmd.Seq, Instrument: cmd.Instrument, OrderId: cmd.OrderId(), Reason: reason})
}

// findOrder locates the live *orderbook.Order at loc using only the
// package's exported traversal API (PriceLevel owns the order; the
// engine never reaches into its internals).
func findOrder(book *orderbook.OrderBook, loc orderbook.OrderIndex) (*orderbook.Order, bool) {
	hb := book.Bids
	if loc.Side == orderbook.Ask {
		hb = book.Asks
	}
	lvl, _, found := hb.Locate(loc.Price)
	if !found {
		return nil, false
	}
	for o := lvl.Head(); o != nil; o = o.Next() {
		if o.Memo == loc.Memo {
			return o, true
		}
	}
	return nil, false
}

func rejectReasonOf(err error, fallback orderbook.RejectReason) orderbook.RejectReason {
	var ce *orderbook.CancelError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	var ae *orderbook.AmendError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return fallback
}
