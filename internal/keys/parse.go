package keys

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	PublicKeySize  = secp256k1.PubKeyBytesLenCompressed
	PrivateKeySize = secp256k1.PrivKeyBytesLen
	DigestSize     = sha256.Size
)

// ParsePublicKey parses a 33-byte compressed secp256k1 point.
func ParsePublicKey(b []byte) (*secp256k1.PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidKey, PublicKeySize, len(b))
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return pub, nil
}

// ParsePrivateKey parses a 32-byte big-endian scalar in [1, n-1].
func ParsePrivateKey(b []byte) (*secp256k1.PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrInvalidKey, PrivateKeySize, len(b))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: private key scalar out of range", ErrInvalidKey)
	}
	return secp256k1.NewPrivateKey(&s), nil
}

func checkPublic(pub *secp256k1.PublicKey, name string) error {
	if pub == nil {
		return fmt.Errorf("%w: nil %s public key", ErrInvalidKey, name)
	}
	if !pub.IsOnCurve() {
		return fmt.Errorf("%w: %s public key is not on the curve", ErrInvalidKey, name)
	}
	return nil
}

func checkPrivate(priv *secp256k1.PrivateKey, name string) error {
	if priv == nil {
		return fmt.Errorf("%w: nil %s private key", ErrInvalidKey, name)
	}
	if priv.Key.IsZero() {
		return fmt.Errorf("%w: zero %s private key", ErrInvalidKey, name)
	}
	return nil
}

// toPublicKey converts a Jacobian point to an affine public key. The point
// at infinity has no encoding and is rejected.
func toPublicKey(p *secp256k1.JacobianPoint) (*secp256k1.PublicKey, error) {
	if (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero() {
		return nil, fmt.Errorf("%w: point at infinity", ErrInvalidKey)
	}
	p.ToAffine()
	return secp256k1.NewPublicKey(&p.X, &p.Y), nil
}

func addPoints(a, b *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	var pa, pb, sum secp256k1.JacobianPoint
	a.AsJacobian(&pa)
	b.AsJacobian(&pb)
	secp256k1.AddNonConst(&pa, &pb, &sum)
	return toPublicKey(&sum)
}

// SharedPoint returns pub*priv + offset. The payload cipher uses the
// sender's public key as offset.
func SharedPoint(priv *secp256k1.PrivateKey, pub, offset *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	if err := checkPrivate(priv, "dh"); err != nil {
		return nil, err
	}
	if err := checkPublic(pub, "dh"); err != nil {
		return nil, err
	}
	if err := checkPublic(offset, "offset"); err != nil {
		return nil, err
	}

	var pj, product, oj, sum secp256k1.JacobianPoint
	pub.AsJacobian(&pj)
	secp256k1.ScalarMultNonConst(&priv.Key, &pj, &product)
	offset.AsJacobian(&oj)
	secp256k1.AddNonConst(&product, &oj, &sum)
	return toPublicKey(&sum)
}
