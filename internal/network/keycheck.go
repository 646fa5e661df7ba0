package network

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrInvalidPublicKey is returned by ValidatePubKey when the hex string does
// not decode to a point on the secp256k1 curve.
var ErrInvalidPublicKey = errors.New("network: public key is not a valid secp256k1 point")

// ValidatePubKey checks that a validator's advertised public key is
// syntactically a secp256k1 point. This is advisory: a node with a
// malformed key is still added to the network, since the controller's job
// is to fuzz the network, not to gate it on key hygiene. Callers log the
// error rather than reject the node.
func ValidatePubKey(hexPubKey string) error {
	raw, err := hex.DecodeString(hexPubKey)
	if err != nil {
		return ErrInvalidPublicKey
	}
	if _, err := secp256k1.ParsePubKey(raw); err != nil {
		return ErrInvalidPublicKey
	}
	return nil
}

// Fingerprint returns the RIPEMD-160(SHA-256(key)) digest of a validator
// public key, used to produce a short, stable label for logs when the full
// hex key would be noisy. Logged once per validator at startup alongside any
// ValidatePubKey failure.
func Fingerprint(hexPubKey string) (string, error) {
	raw, err := hex.DecodeString(hexPubKey)
	if err != nil {
		return "", ErrInvalidPublicKey
	}
	sha := sha256.Sum256(raw)
	h := ripemd160.New()
	h.Write(sha[:])
	return hex.EncodeToString(h.Sum(nil)), nil
}
