package journal

import (
	"fmt"
	"os"
	"path/filepath"
)

// segment is one append-only file within the journal directory,
// adapted from infra/wal/entry/segment.go to track size for rotation.
type segment struct {
	file   *os.File
	offset int64
}

func segmentPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("segment-%06d.journal", index))
}

func openSegment(dir string, index int) (*segment, error) {
	f, err := os.OpenFile(segmentPath(dir, index), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &segment{file: f, offset: info.Size()}, nil
}

func (s *segment) append(b []byte) error {
	_, err := s.Write(b)
	return err
}

// Write implements io.Writer so record.go's writeRecord can frame
// directly onto the current segment.
func (s *segment) Write(b []byte) (int, error) {
	n, err := s.file.Write(b)
	s.offset += int64(n)
	return n, err
}

func (s *segment) close() error {
	return s.file.Close()
}

func listSegments(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "segment-*.journal"))
	if err != nil {
		return nil, err
	}
	return paths, nil
}
