// Package logging writes the per-iteration CSV logs the controller produces:
// every action decision, every observed ledger result, and the derived
// spec-check verdicts, plus an optional raw execution log and lz4 archival
// of completed iterations.
package logging

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CSVLogger is the shared base every concrete logger builds on: it owns one
// file opened for the lifetime of an iteration, writes a header row on
// creation, and is safe for concurrent Log calls.
type CSVLogger struct {
	mu      sync.Mutex
	file    *os.File
	writer  *csv.Writer
	columns int
	path    string
}

// NewCSVLogger creates (or truncates) a CSV file at ./logs/<directory>/<filename>.csv
// and writes header as its first row.
func NewCSVLogger(directory, filename string, header []string) (*CSVLogger, error) {
	dir := filepath.Join("logs", directory)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(filename, ".csv") {
		filename += ".csv"
	}
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVLogger{file: f, writer: w, columns: len(header), path: path}, nil
}

// LogRow appends one row, enforcing it matches the declared column count.
func (l *CSVLogger) LogRow(row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(row) != l.columns {
		return fmt.Errorf("logging: row has %d fields, want %d", len(row), l.columns)
	}
	if err := l.writer.Write(row); err != nil {
		return err
	}
	l.writer.Flush()
	return l.writer.Error()
}

// Path returns the file path this logger writes to, used by SpecChecker to
// re-read a completed iteration's result log.
func (l *CSVLogger) Path() string {
	return l.path
}

// Close flushes and closes the underlying file.
func (l *CSVLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Flush()
	return l.file.Close()
}
