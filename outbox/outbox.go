package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// State is where one outbox entry sits in the at-least-once delivery
// pipeline.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Record is the persisted state of one outbox entry, keyed by the seq
// passed to PutNew (engine.OutboxSink draws it from its own allocator,
// not from Event.Seq).
type Record struct {
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte // the encoded Event, so the broadcaster never re-derives it
}

// encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 1+4+8+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[13:], r.Payload)
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) < 13 {
		return Record{}, errors.New("outbox: record too short")
	}
	return Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[13:]...),
	}, nil
}

// Outbox is a pebble-backed durable queue of events awaiting delivery.
type Outbox struct {
	db *pebble.DB
}

// Open opens (or creates) the outbox database at dir.
func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{DisableWAL: false})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error { return o.db.Close() }

// PutNew records a freshly emitted event as awaiting delivery. Called
// by the engine's event sink before the event is handed to the
// broadcaster, so a crash before the broadcaster runs still leaves the
// event recoverable on restart.
func (o *Outbox) PutNew(seq uint64, payload []byte) error {
	return o.db.Set(keyFor(seq), encodeRecord(Record{State: StateNew, Payload: payload}), pebble.Sync)
}

// MarkSent transitions seq to Sent after a successful produce to Kafka.
func (o *Outbox) MarkSent(seq uint64, retries uint32) error {
	return o.transition(seq, StateSent, retries)
}

// MarkAcked transitions seq to Acked once Kafka's ack is observed.
func (o *Outbox) MarkAcked(seq uint64, retries uint32) error {
	return o.transition(seq, StateAcked, retries)
}

// MarkFailed records a delivery attempt failure, retaining the event
// for a future retry pass.
func (o *Outbox) MarkFailed(seq uint64, retries uint32) error {
	return o.transition(seq, StateFailed, retries)
}

func (o *Outbox) transition(seq uint64, state State, retries uint32) error {
	rec, err := o.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Retries = retries
	rec.LastAttempt = time.Now().UnixNano()
	return o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// Delete removes an Acked entry (periodic cleanup).
func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

// Get returns the current record for seq.
func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decodeRecord(val)
}

// ScanByState iterates every entry currently in state, in key (seq)
// order, invoking fn for each. Used by the broadcaster to find work
// and by a cleanup job to find Acked entries to delete.
func (o *Outbox) ScanByState(state State, fn func(seq uint64, rec Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("event/"),
		UpperBound: []byte("event/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(seq, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("event/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("event/"))), "%d", &seq)
	return seq, err
}
