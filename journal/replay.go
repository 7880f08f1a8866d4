package journal

import (
	"io"
	"os"
	"sort"
	"time"
)

// ReplayHandler is invoked once per decoded Entry, in seq order,
// during Replay. Returning an error aborts the replay.
type ReplayHandler func(Entry) error

// Replay walks every segment file in dir in order and decodes each
// framed record, calling fn for each, mirroring
// infra/wal/entry/replay.go's scan-and-dispatch shape. It returns the
// last seq seen, so a restarted engine knows where to resume.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	paths, err := listSegments(dir)
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return lastSeq, err
		}
		lastSeq, err = replaySegment(f, lastSeq, fn)
		_ = f.Close()
		if err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func replaySegment(f *os.File, lastSeq uint64, fn ReplayHandler) (uint64, error) {
	for {
		body, err := readRecord(f)
		if err != nil {
			if err == io.EOF {
				return lastSeq, nil
			}
			return lastSeq, err
		}
		e, err := decodeFrame(body)
		if err != nil {
			return lastSeq, err
		}
		if lastSeq > 0 && e.Seq <= lastSeq {
			return lastSeq, ErrCorruptRecord // seq regression
		}
		lastSeq = e.Seq
		if err := fn(e); err != nil {
			return lastSeq, err
		}
	}
}

// OpenWithReplay opens the on-disk journal at cfg.Dir (if any),
// replays its contents through fn to rebuild engine state, and
// returns a ready-to-append Journal whose in-memory log already holds
// every replayed entry and whose current segment is the last one on
// disk (new appends continue it rather than starting a fresh file).
func OpenWithReplay(cfg Config, fn ReplayHandler) (*Journal, error) {
	j := &Journal{segSize: cfg.SegmentSize, segDuration: cfg.SegmentDuration}
	if cfg.Dir == "" {
		return j, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	if _, err := Replay(cfg.Dir, func(e Entry) error {
		j.entries = append(j.entries, e)
		return fn(e)
	}); err != nil {
		return nil, err
	}

	j.dir = cfg.Dir
	paths, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	j.segIndex = len(paths)
	if j.segIndex > 0 {
		j.segIndex--
	}
	seg, err := openSegment(cfg.Dir, j.segIndex)
	if err != nil {
		return nil, err
	}
	j.current = seg
	j.lastRotate = time.Now()
	return j, nil
}
