package keys

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PayloadDigest is the stamp digest of a serialized payload.
func PayloadDigest(serializedPayload []byte) [DigestSize]byte {
	return sha256.Sum256(serializedPayload)
}

// DeriveStampPublicKey returns digest*G + destPub, reading digest as a
// big-endian scalar.
//
// A digest numerically >= n is reduced by the curve arithmetic, which is the
// same point DeriveStampPrivateKey's add-then-reduce scalar maps to.
func DeriveStampPublicKey(digest []byte, destPub *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	if len(digest) != DigestSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigestLength, DigestSize, len(digest))
	}
	if err := checkPublic(destPub, "destination"); err != nil {
		return nil, err
	}

	var d secp256k1.ModNScalar
	d.SetByteSlice(digest)

	var digestPoint, dest, sum secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&d, &digestPoint)
	destPub.AsJacobian(&dest)
	secp256k1.AddNonConst(&digestPoint, &dest, &sum)
	return toPublicKey(&sum)
}

// DeriveStampPrivateKey returns (destPriv + digest) mod n.
//
// The digest integer is added unreduced and the sum is reduced once.
func DeriveStampPrivateKey(digest []byte, destPriv *secp256k1.PrivateKey) (*secp256k1.PrivateKey, error) {
	if len(digest) != DigestSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigestLength, DigestSize, len(digest))
	}
	if err := checkPrivate(destPriv, "destination"); err != nil {
		return nil, err
	}

	destBytes := destPriv.Key.Bytes()
	sum := new(big.Int).SetBytes(destBytes[:])
	sum.Add(sum, new(big.Int).SetBytes(digest))
	sum.Mod(sum, secp256k1.Params().N)
	if sum.Sign() == 0 {
		return nil, fmt.Errorf("%w: stamp scalar is zero", ErrInvalidKey)
	}

	var buf [PrivateKeySize]byte
	sum.FillBytes(buf[:])
	var s secp256k1.ModNScalar
	s.SetBytes(&buf)
	return secp256k1.NewPrivateKey(&s), nil
}
