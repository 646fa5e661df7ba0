package network

import (
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePubKeyAcceptsValidPoint(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pub := hex.EncodeToString(priv.PubKey().SerializeCompressed())

	assert.NoError(t, ValidatePubKey(pub))
}

func TestValidatePubKeyRejectsGarbage(t *testing.T) {
	assert.ErrorIs(t, ValidatePubKey("not hex at all"), ErrInvalidPublicKey)
	assert.ErrorIs(t, ValidatePubKey("deadbeef"), ErrInvalidPublicKey)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pub := hex.EncodeToString(priv.PubKey().SerializeCompressed())

	f1, err := Fingerprint(pub)
	require.NoError(t, err)
	f2, err := Fingerprint(pub)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
}
