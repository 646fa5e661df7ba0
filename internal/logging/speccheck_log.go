package logging

import (
	"encoding/csv"
	"os"
	"strconv"
)

var specCheckColumns = []string{
	"iteration",
	"reached_goal_ledger",
	"same_ledger_hashes",
	"same_ledger_indexes",
}

// SpecCheckLogger records one row per completed iteration's spec-check
// verdict. Unlike ActionLogger/ResultLogger it spans the whole run, so
// every call reopens the file in append mode rather than holding it open
// for the controller's entire lifetime.
type SpecCheckLogger struct {
	path string
}

// NewSpecCheckLogger creates (or truncates) the spec-check log for the
// whole run and writes its header.
func NewSpecCheckLogger(directory, filename string) (*SpecCheckLogger, error) {
	base, err := NewCSVLogger(directory, filename, specCheckColumns)
	if err != nil {
		return nil, err
	}
	path := base.Path()
	if err := base.Close(); err != nil {
		return nil, err
	}
	return &SpecCheckLogger{path: path}, nil
}

// LogSpecCheck appends one row, reopening the file for the duration of the
// write.
func (s *SpecCheckLogger) LogSpecCheck(iteration int, reachedGoal, sameHashes, sameIndexes bool) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		strconv.Itoa(iteration),
		strconv.FormatBool(reachedGoal),
		strconv.FormatBool(sameHashes),
		strconv.FormatBool(sameIndexes),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Path returns the spec-check log's file path.
func (s *SpecCheckLogger) Path() string {
	return s.path
}
