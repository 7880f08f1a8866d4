package engine

import (
	"bytes"
	"encoding/gob"
	"log"
	"sync"

	"clobengine/outbox"
	"clobengine/sequence"
)

// EventSink is the engine's write-only fan-out point for Events. The
// engine never blocks waiting on a slow subscriber; an EventSink
// implementation that needs backpressure must buffer internally
// (spec §5: "must be lock-free or contention-bounded from the
// engine's side").
type EventSink interface {
	Publish(Event)
}

// ChannelSink buffers Events on a channel for an in-process consumer
// (a gRPC StreamEvents handler, a test assertion loop). Publish never
// blocks the engine thread; when the buffer is full the event being
// published is dropped (and logged) rather than stall matching.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink constructs a ChannelSink with the given buffer depth.
func NewChannelSink(depth int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, depth)}
}

// Events returns the channel consumers should range over.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

// Publish implements EventSink.
func (s *ChannelSink) Publish(e Event) {
	select {
	case s.ch <- e:
	default:
		log.Printf("engine: channel sink full, dropping event %s seq %d", e.Kind, e.Seq)
	}
}

// OutboxSink persists every Event into a pebble-backed outbox.Outbox
// for durable at-least-once delivery by a broadcaster.Broadcaster,
// keyed by a dedicated sequence.Allocator rather than Event.Seq (many
// events can share one command seq — one OrderAccepted plus several
// Trades — and outbox keys must be unique).
type OutboxSink struct {
	box *outbox.Outbox
	seq *sequence.Allocator
}

// NewOutboxSink constructs an OutboxSink.
func NewOutboxSink(box *outbox.Outbox, seq *sequence.Allocator) *OutboxSink {
	return &OutboxSink{box: box, seq: seq}
}

// Publish implements EventSink.
func (s *OutboxSink) Publish(e Event) {
	payload, err := encodeEvent(e)
	if err != nil {
		log.Printf("engine: encode event %s seq %d: %v", e.Kind, e.Seq, err)
		return
	}
	if err := s.box.PutNew(s.seq.Next(), payload); err != nil {
		log.Printf("engine: outbox sink write failed for event %s seq %d: %v", e.Kind, e.Seq, err)
	}
}

func encodeEvent(e Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEvent reverses encodeEvent; exported for the broadcaster or a
// test harness that needs to inspect what an OutboxSink wrote.
func DecodeEvent(b []byte) (Event, error) {
	var e Event
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// CompositeSink fans one Event out to several sinks in order, e.g. a
// ChannelSink for live subscribers plus an OutboxSink for durability.
type CompositeSink struct {
	sinks []EventSink
}

// NewCompositeSink constructs a CompositeSink over the given sinks.
func NewCompositeSink(sinks ...EventSink) *CompositeSink {
	return &CompositeSink{sinks: sinks}
}

// Publish implements EventSink.
func (c *CompositeSink) Publish(e Event) {
	for _, s := range c.sinks {
		s.Publish(e)
	}
}

// EventHub is a multi-subscriber fan-out sink for live consumers such
// as a gRPC StreamEvents handler, where each call needs its own
// independent read position. A slow subscriber only drops events off
// its own channel; it never blocks the engine thread or other
// subscribers.
type EventHub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewEventHub constructs an empty EventHub.
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[int]chan Event)}
}

// Publish implements EventSink.
func (h *EventHub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			log.Printf("engine: event hub subscriber %d backlogged, dropping event %s seq %d", id, e.Kind, e.Seq)
		}
	}
}

// Subscribe registers a new subscriber and returns its event channel
// plus an unsubscribe function the caller must invoke when done.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	ch := make(chan Event, 256)
	h.subs[id] = ch
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
		h.mu.Unlock()
	}
	return ch, unsubscribe
}
