package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// SkipLog records rows dropped during processing as a CSV file with columns
// reason, source, line, width. A nil *SkipLog only counts.
type SkipLog struct {
	mu      sync.Mutex
	reasons map[string]int
	f       *os.File
	w       *csv.Writer
}

// NewSkipLog creates the log file at path, including parent directories.
// An empty path returns a counting-only log.
func NewSkipLog(path string) (*SkipLog, error) {
	s := &SkipLog{reasons: make(map[string]int)}
	if path == "" {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open skip log %s: %w", path, err)
	}
	s.f = f
	s.w = csv.NewWriter(f)
	if err := s.w.Write([]string{"reason", "source", "line", "width"}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write skip log header: %w", err)
	}
	return s, nil
}

// Add records one skipped row.
func (s *SkipLog) Add(reason string, o Origin, width int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons[reason]++
	if s.w != nil {
		_ = s.w.Write([]string{reason, o.Source, strconv.Itoa(o.Line), strconv.Itoa(width)})
	}
}

// Counts returns a copy of the per-reason totals.
func (s *SkipLog) Counts() map[string]int {
	out := make(map[string]int)
	if s == nil {
		return out
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.reasons {
		out[k] = v
	}
	return out
}

// Close flushes and closes the file.
func (s *SkipLog) Close() error {
	if s == nil || s.f == nil {
		return nil
	}
	s.w.Flush()
	werr := s.w.Error()
	if err := s.f.Close(); err != nil {
		return err
	}
	return werr
}
