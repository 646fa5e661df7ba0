package logging

import (
	"encoding/hex"
	"strconv"
	"time"
)

var executionLogColumns = []string{
	"timestamp",
	"action",
	"from_port",
	"to_port",
	"data",
}

// ExecutionLogger is an optional, raw per-packet debug log distinct from
// ActionLogger: one row per RPC call, keyed by port rather than node index,
// classifying the outcome as "Send", "Drop" or "Delay:<ms>ms". Gated behind
// a config flag since it duplicates ActionLogger's information in a format
// closer to the wire.
type ExecutionLogger struct {
	*CSVLogger
}

// NewExecutionLogger opens the execution log for one iteration.
func NewExecutionLogger(subDirectory, filename string) (*ExecutionLogger, error) {
	if filename == "" {
		filename = "execution_log"
	}
	base, err := NewCSVLogger(subDirectory, filename, executionLogColumns)
	if err != nil {
		return nil, err
	}
	return &ExecutionLogger{CSVLogger: base}, nil
}

// Classify renders an action as the original implementation's
// "Send"/"Drop"/"Delay:Xms" label.
func Classify(action uint32) string {
	switch action {
	case 0:
		return "Send"
	case ^uint32(0):
		return "Drop"
	default:
		return "Delay:" + strconv.FormatUint(uint64(action), 10) + "ms"
	}
}

// LogExecution appends one row describing a single SendPacket call.
func (e *ExecutionLogger) LogExecution(action uint32, fromPort, toPort uint32, data []byte) error {
	row := []string{
		strconv.FormatInt(time.Now().UnixMilli(), 10),
		Classify(action),
		strconv.FormatUint(uint64(fromPort), 10),
		strconv.FormatUint(uint64(toPort), 10),
		hex.EncodeToString(data),
	}
	return e.LogRow(row)
}
