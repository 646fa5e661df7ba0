// Package speccheck derives pass/fail verdicts for each completed iteration
// from its result log, and aggregates those verdicts into a run-level
// summary once the controller terminates.
package speccheck

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SpecCheckLog is the subset of logging.SpecCheckLogger the checker needs.
type SpecCheckLog interface {
	LogSpecCheck(iteration int, reachedGoal, sameHashes, sameIndexes bool) error
	Path() string
}

// Checker reads an iteration's result log and records whether the run
// reached its ledger goal and whether every validator agreed on ledger
// hashes and indexes.
type Checker struct {
	resultLogPath func(iteration int) string
	specLog       SpecCheckLog
}

// NewChecker builds a Checker. resultLogPath maps an iteration number to
// the path of that iteration's result log, e.g.
// "logs/<dir>/result_log_iter<N>.csv".
func NewChecker(resultLogPath func(iteration int) string, specLog SpecCheckLog) *Checker {
	return &Checker{resultLogPath: resultLogPath, specLog: specLog}
}

// CheckIteration reads iteration's result log and appends one verdict row
// to the spec-check log. A result log with no data rows (iteration ended
// before any ledger was observed) is treated as not having reached the
// goal, with hashes/indexes vacuously agreeing.
func (c *Checker) CheckIteration(iteration int) error {
	reachedGoal, sameHashes, sameIndexes, err := evaluateResultLog(c.resultLogPath(iteration))
	if err != nil {
		return err
	}
	return c.specLog.LogSpecCheck(iteration, reachedGoal, sameHashes, sameIndexes)
}

func evaluateResultLog(path string) (reachedGoal, sameHashes, sameIndexes bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, false, false, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return false, false, false, err
	}
	if len(rows) <= 1 {
		return false, true, true, nil
	}
	last := rows[len(rows)-1]
	if len(last) != 6 {
		return false, false, false, fmt.Errorf("speccheck: malformed result row in %s", path)
	}

	ledgerCount, err := strconv.Atoi(last[0])
	if err != nil {
		return false, false, false, err
	}
	goalLedgerCount, err := strconv.Atoi(last[1])
	if err != nil {
		return false, false, false, err
	}
	reachedGoal = ledgerCount >= goalLedgerCount

	sameHashes = allEqual(splitNonEmpty(last[4]))
	sameIndexes = allEqual(splitNonEmpty(last[5]))
	return reachedGoal, sameHashes, sameIndexes, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

func allEqual(values []string) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Aggregate reads the whole spec-check log and summarises how many
// iterations reached their goal and agreed across all validators.
func (c *Checker) Aggregate() error {
	f, err := os.Open(c.specLog.Path())
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return err
	}
	if len(rows) <= 1 {
		return nil
	}

	var reached, agreedHashes, agreedIndexes int
	for _, row := range rows[1:] {
		if len(row) != 4 {
			continue
		}
		if row[1] == "true" {
			reached++
		}
		if row[2] == "true" {
			agreedHashes++
		}
		if row[3] == "true" {
			agreedIndexes++
		}
	}

	total := len(rows) - 1
	dir := strings.TrimSuffix(c.specLog.Path(), ".csv")
	summaryPath := dir + "_summary.txt"
	summary := fmt.Sprintf(
		"iterations=%d reached_goal=%d same_hashes=%d same_indexes=%d\n",
		total, reached, agreedHashes, agreedIndexes,
	)
	return os.WriteFile(summaryPath, []byte(summary), 0o644)
}
