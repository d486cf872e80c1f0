package relay

import (
	"bytes"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Layr-Labs/stampmsg/internal/keys"
	"github.com/Layr-Labs/stampmsg/internal/payload"
)

// NewMessage encodes entries for destPub under scheme and signs the result
// with senderPriv.
func NewMessage(entries payload.Entries, senderPriv *secp256k1.PrivateKey, destPub *secp256k1.PublicKey, scheme payload.Scheme) (*Message, error) {
	if senderPriv == nil {
		return nil, fmt.Errorf("%w: nil sender private key", keys.ErrInvalidKey)
	}

	var opts payload.EncodeOptions
	switch scheme {
	case payload.SchemePlain:
	case payload.SchemeEncryptedDH:
		opts = payload.EncodeOptions{Encrypt: true, SenderPriv: senderPriv, DestPub: destPub}
	default:
		return nil, fmt.Errorf("%w: %s", payload.ErrUnsupportedScheme, scheme)
	}

	p, err := payload.Encode(entries, opts)
	if err != nil {
		return nil, err
	}
	serialized := payload.MarshalPayload(p)
	digest := keys.PayloadDigest(serialized)
	sig, err := keys.SignDigest(senderPriv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}

	return &Message{
		SenderPubKey:      senderPriv.PubKey().SerializeCompressed(),
		SerializedPayload: serialized,
		PayloadDigest:     digest[:],
		Signature:         sig,
	}, nil
}

// NewTextMessage builds a message carrying a single text entry.
func NewTextMessage(text string, senderPriv *secp256k1.PrivateKey, destPub *secp256k1.PublicKey, scheme payload.Scheme) (*Message, error) {
	return NewMessage(payload.Entries{payload.TextEntry(text)}, senderPriv, destPub, scheme)
}

// Sender parses the sender's public key.
func (m *Message) Sender() (*secp256k1.PublicKey, error) {
	pub, err := keys.ParsePublicKey(m.SenderPubKey)
	if err != nil {
		return nil, fmt.Errorf("sender key: %w", err)
	}
	return pub, nil
}

// Verify checks that PayloadDigest matches SerializedPayload and that
// Signature was made by the sender over it.
func (m *Message) Verify() error {
	sender, err := m.Sender()
	if err != nil {
		return err
	}
	digest := keys.PayloadDigest(m.SerializedPayload)
	if !bytes.Equal(digest[:], m.PayloadDigest) {
		return fmt.Errorf("%w: payload digest mismatch", ErrInvalidSignature)
	}
	ok, err := keys.VerifyDigest(sender, digest[:], m.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !ok {
		return fmt.Errorf("%w: signature does not match sender", ErrInvalidSignature)
	}
	return nil
}

// Open verifies m and decodes its payload for the holder of destPriv.
func (m *Message) Open(destPriv *secp256k1.PrivateKey) (payload.Entries, error) {
	if err := m.Verify(); err != nil {
		return nil, err
	}
	sender, err := m.Sender()
	if err != nil {
		return nil, err
	}
	return payload.DecodeBytes(m.SerializedPayload, payload.DecodeContext{
		DestPriv:  destPriv,
		SenderPub: sender,
	})
}

// StampPublicKey is the one-time key a payment stamp for m pays to.
func (m *Message) StampPublicKey(destPub *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	return keys.DeriveStampPublicKey(m.PayloadDigest, destPub)
}

// StampPrivateKey lets the recipient spend a stamp paid to StampPublicKey.
func (m *Message) StampPrivateKey(destPriv *secp256k1.PrivateKey) (*secp256k1.PrivateKey, error) {
	return keys.DeriveStampPrivateKey(m.PayloadDigest, destPriv)
}
