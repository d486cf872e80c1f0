package payload

import (
	"fmt"
	"math"

	"github.com/Layr-Labs/stampmsg/internal/wire"
)

// Scheme tags how Payload.Entries is encoded.
type Scheme uint32

const (
	SchemePlain       Scheme = 0
	SchemeEncryptedDH Scheme = 1
)

func (s Scheme) String() string {
	switch s {
	case SchemePlain:
		return "plain"
	case SchemeEncryptedDH:
		return "encrypted_dh"
	default:
		return fmt.Sprintf("scheme(%d)", uint32(s))
	}
}

// Payload is the wire entity carried inside a relay message.
type Payload struct {
	Scheme  Scheme
	Entries []byte

	// SecretSeed is the compressed ephemeral public key. Present iff Scheme
	// is SchemeEncryptedDH.
	SecretSeed []byte
}

const (
	fieldPayloadScheme     = 1
	fieldPayloadSecretSeed = 2
	fieldPayloadEntries    = 3
)

// MarshalPayload returns the wire form of p.
func MarshalPayload(p *Payload) []byte {
	var b []byte
	b = wire.AppendVarint(b, fieldPayloadScheme, uint64(p.Scheme))
	b = wire.AppendBytes(b, fieldPayloadSecretSeed, p.SecretSeed)
	return wire.AppendBytes(b, fieldPayloadEntries, p.Entries)
}

// UnmarshalPayload parses a serialized Payload. The scheme is not validated
// here; Decode rejects unknown schemes.
func UnmarshalPayload(b []byte) (*Payload, error) {
	p := &Payload{}
	err := wire.Walk(b, func(f wire.Field) error {
		switch {
		case f.IsVarint(fieldPayloadScheme):
			if f.Varint > math.MaxUint32 {
				return fmt.Errorf("scheme %d out of range", f.Varint)
			}
			p.Scheme = Scheme(f.Varint)
		case f.IsBytes(fieldPayloadSecretSeed):
			p.SecretSeed = clone(f.Bytes)
		case f.IsBytes(fieldPayloadEntries):
			p.Entries = clone(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedPayload, err)
	}
	return p, nil
}
