package speccheck

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpecLog struct {
	path string
	rows [][]string
}

func (f *fakeSpecLog) LogSpecCheck(iteration int, reachedGoal, sameHashes, sameIndexes bool) error {
	row := []string{
		itoa(iteration), btoa(reachedGoal), btoa(sameHashes), btoa(sameIndexes),
	}
	f.rows = append(f.rows, row)
	return writeSpecCheckCSV(f.path, f.rows)
}

func (f *fakeSpecLog) Path() string { return f.path }

func itoa(i int) string {
	return strconv.Itoa(i)
}

func btoa(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func writeSpecCheckCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"iteration", "reached_goal_ledger", "same_ledger_hashes", "same_ledger_indexes"})
	for _, r := range rows {
		w.Write(r)
	}
	w.Flush()
	return w.Error()
}

func writeResultLog(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.Write([]string{"ledger_count", "goal_ledger_count", "time_to_consensus", "close_times", "ledger_hashes", "ledger_indexes"}))
	for _, r := range rows {
		require.NoError(t, w.Write(r))
	}
	w.Flush()
	require.NoError(t, w.Error())
}

func TestCheckIterationReachedGoalAndAgreement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result_log_iter1.csv")
	writeResultLog(t, path, [][]string{
		{"5", "5", "1.000000", "100;200", "ab;ab", "1;1"},
	})

	specPath := filepath.Join(dir, "spec_check_log.csv")
	require.NoError(t, writeSpecCheckCSV(specPath, nil))
	spec := &fakeSpecLog{path: specPath}

	checker := NewChecker(func(iteration int) string { return path }, spec)
	require.NoError(t, checker.CheckIteration(1))

	require.Len(t, spec.rows, 1)
	assert.Equal(t, []string{"1", "true", "true", "true"}, spec.rows[0])
}

func TestCheckIterationDisagreement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result_log_iter1.csv")
	writeResultLog(t, path, [][]string{
		{"3", "5", "1.000000", "", "ab;cd", "1;2"},
	})

	specPath := filepath.Join(dir, "spec_check_log.csv")
	require.NoError(t, writeSpecCheckCSV(specPath, nil))
	spec := &fakeSpecLog{path: specPath}

	checker := NewChecker(func(iteration int) string { return path }, spec)
	require.NoError(t, checker.CheckIteration(1))

	assert.Equal(t, []string{"1", "false", "false", "false"}, spec.rows[0])
}

func TestAggregateWritesSummary(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "spec_check_log.csv")
	require.NoError(t, writeSpecCheckCSV(specPath, [][]string{
		{"1", "true", "true", "true"},
		{"2", "false", "true", "false"},
	}))
	spec := &fakeSpecLog{path: specPath}

	checker := NewChecker(nil, spec)
	require.NoError(t, checker.Aggregate())

	summary, err := os.ReadFile(filepath.Join(dir, "spec_check_log_summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "iterations=2")
	assert.Contains(t, string(summary), "reached_goal=1")
}
