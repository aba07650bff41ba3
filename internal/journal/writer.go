// Package journal persists resolution events as zstd-compressed JSON lines,
// one segment file per run and day.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Writer appends JSON lines to a zstd stream, rotating to a new file when
// the segment name changes.
type Writer struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	segment string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewWriter creates a writer rooted at baseDir. Nothing is opened until the
// first Write.
func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

// Write encodes v as one line of segment.
func (w *Writer) Write(segment string, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if segment != w.segment || w.w == nil {
		if err := w.rotateLocked(segment); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("journal: marshal: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("journal: flush: %w", err)
	}
	return nil
}

// Close finishes the current segment.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Path returns the file used for a segment.
func (w *Writer) Path(segment string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, segment))
}

func (w *Writer) rotateLocked(segment string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.Path(segment)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("journal: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal: open segment: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("journal: zstd writer: %w", err)
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.segment = segment
	return nil
}

func (w *Writer) closeLocked() error {
	var errs []error
	if w.w != nil {
		if err := w.w.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("journal: flush: %w", err))
		}
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal: finish frame: %w", err))
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal: close segment: %w", err))
		}
		w.f = nil
	}
	w.w = nil
	return errors.Join(errs...)
}
