package interceptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartNewAndStopTerminatesProcess(t *testing.T) {
	m := NewManager("sleep", "30")
	require.NoError(t, m.StartNew())

	m.mu.Lock()
	cmd := m.cmd
	m.mu.Unlock()
	require.NotNil(t, cmd)
	require.NotNil(t, cmd.Process)

	require.NoError(t, m.Stop())
}

func TestRestartReplacesSubprocess(t *testing.T) {
	m := NewManager("sleep", "30")
	require.NoError(t, m.StartNew())
	m.mu.Lock()
	first := m.cmd.Process.Pid
	m.mu.Unlock()

	require.NoError(t, m.Restart())
	m.mu.Lock()
	second := m.cmd.Process.Pid
	m.mu.Unlock()

	assert.NotEqual(t, first, second)
	require.NoError(t, m.Stop())
}

func TestStopOnAlreadyStoppedManagerIsNoop(t *testing.T) {
	m := NewManager("sleep", "30")
	assert.NoError(t, m.Stop())
	_ = time.Millisecond
}
