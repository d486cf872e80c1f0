package payload

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Layr-Labs/stampmsg/internal/keys"
)

// EncodeOptions selects the scheme for Encode. SenderPriv and DestPub are
// only used when Encrypt is set.
type EncodeOptions struct {
	Encrypt    bool
	SenderPriv *secp256k1.PrivateKey
	DestPub    *secp256k1.PublicKey

	// Rand overrides crypto/rand for the ephemeral key.
	Rand io.Reader
}

// DecodeContext carries the keys needed to open an encrypted payload.
type DecodeContext struct {
	DestPriv  *secp256k1.PrivateKey
	SenderPub *secp256k1.PublicKey
}

// Encode serializes entries and wraps them in a Payload, encrypting them to
// opts.DestPub when opts.Encrypt is set.
func Encode(entries Entries, opts EncodeOptions) (*Payload, error) {
	raw := MarshalEntries(entries)
	if !opts.Encrypt {
		return &Payload{Scheme: SchemePlain, Entries: raw}, nil
	}

	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	sealed, err := EncryptWithRand(r, raw, opts.SenderPriv, opts.DestPub)
	if err != nil {
		return nil, fmt.Errorf("encrypt entries: %w", err)
	}
	return &Payload{
		Scheme:     SchemeEncryptedDH,
		Entries:    sealed.CipherText,
		SecretSeed: sealed.EphemeralPub.SerializeCompressed(),
	}, nil
}

// Decode recovers the Entries list from p. Either the full list is returned
// or an error; never a partial list.
func Decode(p *Payload, dc DecodeContext) (Entries, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrMalformedPayload)
	}

	var raw []byte
	switch p.Scheme {
	case SchemePlain:
		if len(p.SecretSeed) != 0 {
			return nil, fmt.Errorf("%w: secret seed on plain payload", ErrMalformedPayload)
		}
		raw = p.Entries
	case SchemeEncryptedDH:
		eph, err := keys.ParsePublicKey(p.SecretSeed)
		if err != nil {
			return nil, fmt.Errorf("secret seed: %w", err)
		}
		raw, err = Decrypt(p.Entries, dc.DestPriv, dc.SenderPub, eph)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, p.Scheme)
	}
	return UnmarshalEntries(raw)
}

// DecodeBytes parses a serialized Payload and decodes it.
func DecodeBytes(serialized []byte, dc DecodeContext) (Entries, error) {
	p, err := UnmarshalPayload(serialized)
	if err != nil {
		return nil, err
	}
	return Decode(p, dc)
}
