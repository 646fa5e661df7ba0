package logging

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

var resultLogColumns = []string{
	"ledger_count",
	"goal_ledger_count",
	"time_to_consensus",
	"close_times",
	"ledger_hashes",
	"ledger_indexes",
}

// ResultLogger records one row per observed ledger result within an
// iteration.
type ResultLogger struct {
	*CSVLogger
}

// NewResultLogger opens the result log for one iteration.
func NewResultLogger(subDirectory, filename string) (*ResultLogger, error) {
	if filename == "" {
		filename = "result_log"
	}
	base, err := NewCSVLogger(subDirectory, filename, resultLogColumns)
	if err != nil {
		return nil, err
	}
	return &ResultLogger{CSVLogger: base}, nil
}

// LogResult appends one row describing the ledgers validated so far.
func (r *ResultLogger) LogResult(ledgerCount, goalLedgerCount int, timeToConsensus float64, closeTimes []time.Time, ledgerHashes [][]byte, ledgerIndexes []uint32) error {
	closeStrs := make([]string, len(closeTimes))
	for i, ct := range closeTimes {
		closeStrs[i] = strconv.FormatInt(ct.UnixMilli(), 10)
	}
	hashStrs := make([]string, len(ledgerHashes))
	for i, h := range ledgerHashes {
		hashStrs[i] = hex.EncodeToString(h)
	}
	idxStrs := make([]string, len(ledgerIndexes))
	for i, idx := range ledgerIndexes {
		idxStrs[i] = strconv.FormatUint(uint64(idx), 10)
	}

	row := []string{
		strconv.Itoa(ledgerCount),
		strconv.Itoa(goalLedgerCount),
		strconv.FormatFloat(timeToConsensus, 'f', 6, 64),
		strings.Join(closeStrs, ";"),
		strings.Join(hashStrs, ";"),
		strings.Join(idxStrs, ";"),
	}
	return r.LogRow(row)
}
