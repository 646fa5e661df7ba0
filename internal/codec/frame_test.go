package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUnknownTypeIsOpaque(t *testing.T) {
	raw := Encode(MessageType(999), []byte("hello"))

	d, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, MessageType(999), d.TypeID)
	assert.Nil(t, d.Message)
	assert.Equal(t, []byte("hello"), d.Raw)
}

func TestDecodeShortFrameErrors(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01})
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestDecodeStatusChangeRoundTrip(t *testing.T) {
	want := &StatusChange{
		NewStatus:          1,
		NewEvent:           NewEventLedgerClosed,
		LedgerSeq:          42,
		LedgerHash:         make([]byte, 32),
		LedgerHashPrevious: make([]byte, 32),
		NetworkTime:        123456789,
		FirstSeq:           40,
		LastSeq:            42,
	}
	want.LedgerHash[0] = 0xAB

	raw := EncodeStatusChange(want)
	d, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, TypeStatusChange, d.TypeID)

	got, ok := d.Message.(*StatusChange)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "mtStatusChange", TypeStatusChange.String())
	assert.Contains(t, MessageType(12345).String(), "mtUnknown")
}
