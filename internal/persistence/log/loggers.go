// Package log writes and reads the per-frame trace: one JSON object per line,
// zstd compressed, one file per run.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/protocol"
)

var ErrClosed = errors.New("trace writer closed")

// JSONLZstdWriter appends JSON lines to a zstd stream. The file is created on
// the first Write.
type JSONLZstdWriter struct {
	path string

	mu     sync.Mutex
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	closed bool
}

func NewJSONLZstdWriter(path string) *JSONLZstdWriter {
	return &JSONLZstdWriter{path: path}
}

func (w *JSONLZstdWriter) Path() string { return w.path }

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.w == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush pushes buffered lines through the encoder without ending the stream.
func (w *JSONLZstdWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return w.closeLocked()
}

func (w *JSONLZstdWriter) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var errs []error
	if w.w != nil {
		errs = append(errs, w.w.Flush())
	}
	if w.enc != nil {
		errs = append(errs, w.enc.Close())
		w.enc = nil
	}
	if w.f != nil {
		errs = append(errs, w.f.Close())
		w.f = nil
	}
	w.w = nil
	return errors.Join(errs...)
}

// FrameLogger writes one FrameRecord per frame to <dir>/trace-<runID>.jsonl.zst.
type FrameLogger struct {
	runID string
	w     *JSONLZstdWriter
}

func NewFrameLogger(dir, runID string) *FrameLogger {
	return &FrameLogger{runID: runID, w: NewJSONLZstdWriter(TracePath(dir, runID))}
}

func TracePath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("trace-%s.jsonl.zst", runID))
}

func (l *FrameLogger) Path() string { return l.w.Path() }

// WriteFrame stamps the record with the logger's run ID and appends it.
func (l *FrameLogger) WriteFrame(rec protocol.FrameRecord) error {
	rec.RunID = l.runID
	return l.w.Write(rec)
}

func (l *FrameLogger) Flush() error { return l.w.Flush() }
func (l *FrameLogger) Close() error { return l.w.Close() }

// ScanFrames decodes a trace file record by record. Returning an error from fn
// stops the scan and returns that error.
func ScanFrames(path string, fn func(protocol.FrameRecord) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		var rec protocol.FrameRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("%s:%d: unmarshal: %w", filepath.Base(path), line, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return sc.Err()
}

func ReadFrames(path string) ([]protocol.FrameRecord, error) {
	var out []protocol.FrameRecord
	err := ScanFrames(path, func(rec protocol.FrameRecord) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}
