package journal

import (
	"fmt"
	"os"
	"time"

	"clobengine/orderbook"
)

// Config configures an optional on-disk mirror of the journal. Dir
// empty means in-memory only (adequate for a single-process engine
// that never needs to survive a process restart).
type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
}

// Journal is the engine's append-only log of applied commands and
// their derived inverse ops (spec §4.5). The in-memory log is
// authoritative for Rewind; the disk mirror, when configured, exists
// so a restarted process can replay it back into memory.
type Journal struct {
	entries []Entry

	dir         string
	segSize     int64
	segDuration time.Duration
	current     *segment
	segIndex    int
	lastRotate  time.Time
}

// Open constructs a Journal. If cfg.Dir is empty the journal is
// in-memory only and Open never touches the filesystem.
func Open(cfg Config) (*Journal, error) {
	j := &Journal{segSize: cfg.SegmentSize, segDuration: cfg.SegmentDuration}
	if cfg.Dir == "" {
		return j, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	seg, err := openSegment(cfg.Dir, 0)
	if err != nil {
		return nil, err
	}
	j.dir = cfg.Dir
	j.current = seg
	j.lastRotate = time.Now()
	return j, nil
}

// Append records e as the next journal entry. Seq must be strictly
// greater than the previous entry's; gaps between seqs are accepted.
func (j *Journal) Append(e Entry) error {
	if n := len(j.entries); n > 0 && e.Seq <= j.entries[n-1].Seq {
		return fmt.Errorf("journal: non-monotonic seq %d after %d", e.Seq, j.entries[n-1].Seq)
	}
	j.entries = append(j.entries, e)

	if j.current == nil {
		return nil
	}
	body, err := encodeFrame(e)
	if err != nil {
		return err
	}
	if _, err := writeRecord(j.current, body); err != nil {
		return err
	}
	if j.shouldRotate() {
		return j.rotate()
	}
	return nil
}

// shouldRotate reports whether the current segment has outgrown
// either configured limit: size (bytes written) or age (wall-clock
// since the last rotation). Either limit alone triggers a rotation;
// a zero limit never does.
func (j *Journal) shouldRotate() bool {
	if j.current == nil {
		return false
	}
	if j.segSize > 0 && j.current.offset >= j.segSize {
		return true
	}
	if j.segDuration > 0 && time.Since(j.lastRotate) >= j.segDuration {
		return true
	}
	return false
}

func (j *Journal) rotate() error {
	_ = j.current.close()
	j.segIndex++
	seg, err := openSegment(j.dir, j.segIndex)
	if err != nil {
		return err
	}
	j.current = seg
	j.lastRotate = time.Now()
	return nil
}

// Close flushes and closes the on-disk mirror, if any.
func (j *Journal) Close() error {
	if j.current == nil {
		return nil
	}
	return j.current.close()
}

// Len returns the number of entries currently held in memory.
func (j *Journal) Len() int { return len(j.entries) }

// LastSeq returns the seq of the most recently appended entry, or 0 if empty.
func (j *Journal) LastSeq() uint64 {
	if n := len(j.entries); n > 0 {
		return j.entries[n-1].Seq
	}
	return 0
}

// EntryAt returns the entry with the given index (0-based, insertion order).
func (j *Journal) EntryAt(i int) Entry { return j.entries[i] }

// TruncateAfter drops all in-memory entries with seq > target. Used
// after a rewind completes so the journal reflects only [0..target].
func (j *Journal) TruncateAfter(target uint64) {
	n := 0
	for n < len(j.entries) && j.entries[n].Seq <= target {
		n++
	}
	j.entries = j.entries[:n]
}

// Rewind applies InverseOps in reverse journal order down to and
// including the entry immediately after target, undoing their effect
// on book/idx, then truncates the in-memory log to [0..target] (spec
// §4.5's rewind protocol).
func (j *Journal) Rewind(target uint64, book *orderbook.OrderBook, idx *orderbook.IndexMap) {
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if e.Seq <= target {
			break
		}
		Apply(e.Inverse, book, idx)
	}
	j.TruncateAfter(target)
}
