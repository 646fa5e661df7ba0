package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCacheHitAfterPut(t *testing.T) {
	c, err := NewDecodeCache(16)
	require.NoError(t, err)

	raw := Encode(TypePing, []byte("ping"))
	digest := Digest(raw)

	_, ok := c.Get(digest)
	assert.False(t, ok)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	c.Put(digest, decoded)

	got, ok := c.Get(digest)
	require.True(t, ok)
	assert.Equal(t, decoded, got)

	hits, miss := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), miss)
}
