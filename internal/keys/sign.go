package keys

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secp256k1ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignDigest signs a 32-byte digest and returns a 65-byte compact
// (recoverable) signature.
func SignDigest(priv *secp256k1.PrivateKey, digest32 []byte) ([]byte, error) {
	if err := checkPrivate(priv, "signing"); err != nil {
		return nil, err
	}
	if len(digest32) != DigestSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigestLength, DigestSize, len(digest32))
	}
	return secp256k1ecdsa.SignCompact(priv, digest32, true), nil
}

// VerifyDigest reports whether compactSig is a signature by pub over digest32.
func VerifyDigest(pub *secp256k1.PublicKey, digest32, compactSig []byte) (bool, error) {
	if err := checkPublic(pub, "signing"); err != nil {
		return false, err
	}
	if len(digest32) != DigestSize {
		return false, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigestLength, DigestSize, len(digest32))
	}
	// RecoverCompact verifies the signature and returns the recovered public key.
	recovered, _, err := secp256k1ecdsa.RecoverCompact(compactSig, digest32)
	if err != nil {
		return false, nil
	}
	return recovered.IsEqual(pub), nil
}
