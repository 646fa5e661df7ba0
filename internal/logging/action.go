package logging

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/diseb-lab/rocket/internal/codec"
	"github.com/diseb-lab/rocket/internal/network"
)

var actionLogColumns = []string{
	"timestamp",
	"action",
	"send_amount",
	"from_node_id",
	"to_node_id",
	"message_type",
	"original_data",
	"possibly_mutated_data",
}

// ActionLogger records one row per packet decision a strategy makes.
type ActionLogger struct {
	*CSVLogger
}

// NewActionLogger opens the action log for one iteration under
// logs/<subDirectory>/<filename>.
func NewActionLogger(subDirectory, filename string) (*ActionLogger, error) {
	if filename == "" {
		filename = "action_log"
	}
	base, err := NewCSVLogger(subDirectory, filename, actionLogColumns)
	if err != nil {
		return nil, err
	}
	return &ActionLogger{CSVLogger: base}, nil
}

// LogAction appends one decision row. Timestamp defaults to now; callers
// that need a deterministic timestamp in tests can use LogActionAt.
func (a *ActionLogger) LogAction(action network.Action, sendAmount, fromIdx, toIdx int, messageType codec.MessageType, original, mutated []byte) error {
	return a.LogActionAt(time.Now(), action, sendAmount, fromIdx, toIdx, messageType, original, mutated)
}

// LogActionAt is LogAction with an explicit timestamp.
func (a *ActionLogger) LogActionAt(ts time.Time, action network.Action, sendAmount, fromIdx, toIdx int, messageType codec.MessageType, original, mutated []byte) error {
	row := []string{
		strconv.FormatInt(ts.UnixMilli(), 10),
		strconv.FormatUint(uint64(action), 10),
		strconv.Itoa(sendAmount),
		strconv.Itoa(fromIdx),
		strconv.Itoa(toIdx),
		messageType.String(),
		hex.EncodeToString(original),
		hex.EncodeToString(mutated),
	}
	return a.LogRow(row)
}
