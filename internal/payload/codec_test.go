package payload

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Layr-Labs/stampmsg/internal/keys"
)

func sampleEntries() Entries {
	return Entries{
		TextEntry("first"),
		{Kind: "x-future", Headers: []Header{{Name: "a", Value: []byte("1")}, {Name: "b", Value: []byte("2")}}, Data: []byte{0, 1, 2}},
		TextEntry("second"),
		AvatarEntry("image/png", []byte{0x89, 'P', 'N', 'G'}),
	}
}

func entriesEqual(a, b Entries) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || !bytes.Equal(a[i].Data, b[i].Data) || len(a[i].Headers) != len(b[i].Headers) {
			return false
		}
		for j := range a[i].Headers {
			if a[i].Headers[j].Name != b[i].Headers[j].Name || !bytes.Equal(a[i].Headers[j].Value, b[i].Headers[j].Value) {
				return false
			}
		}
	}
	return true
}

func TestPlainPayloadRoundTrip(t *testing.T) {
	in := sampleEntries()
	p, err := Encode(in, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if p.Scheme != SchemePlain || p.SecretSeed != nil {
		t.Fatalf("unexpected plain payload %+v", p)
	}

	out, err := DecodeBytes(MarshalPayload(p), DecodeContext{})
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if !entriesEqual(in, out) {
		t.Fatalf("entries mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestEncryptedPayloadRoundTrip(t *testing.T) {
	sender := mustGenerate(t)
	dest := mustGenerate(t)
	in := sampleEntries()

	p, err := Encode(in, EncodeOptions{Encrypt: true, SenderPriv: sender, DestPub: dest.PubKey()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if p.Scheme != SchemeEncryptedDH || len(p.SecretSeed) != keys.PublicKeySize {
		t.Fatalf("unexpected encrypted payload scheme=%s seed=%d", p.Scheme, len(p.SecretSeed))
	}
	if bytes.Contains(p.Entries, []byte("first")) {
		t.Fatalf("ciphertext contains plaintext")
	}

	out, err := DecodeBytes(MarshalPayload(p), DecodeContext{DestPriv: dest, SenderPub: sender.PubKey()})
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if !entriesEqual(in, out) {
		t.Fatalf("entries mismatch")
	}
}

func TestDecode_UnsupportedScheme(t *testing.T) {
	plain, err := Encode(sampleEntries(), EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	p := &Payload{Scheme: 2, Entries: plain.Entries}

	out, err := Decode(p, DecodeContext{})
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no entries, got %d", len(out))
	}

	parsed, err := UnmarshalPayload(MarshalPayload(p))
	if err != nil {
		t.Fatalf("UnmarshalPayload: %v", err)
	}
	if parsed.Scheme != 2 {
		t.Fatalf("scheme not preserved: %d", parsed.Scheme)
	}
	if _, err := Decode(parsed, DecodeContext{}); !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestDecode_EncryptedErrors(t *testing.T) {
	sender := mustGenerate(t)
	dest := mustGenerate(t)
	p, err := Encode(sampleEntries(), EncodeOptions{Encrypt: true, SenderPriv: sender, DestPub: dest.PubKey()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dc := DecodeContext{DestPriv: dest, SenderPub: sender.PubKey()}

	noSeed := *p
	noSeed.SecretSeed = nil
	if _, err := Decode(&noSeed, dc); !errors.Is(err, keys.ErrInvalidKey) {
		t.Fatalf("missing seed: expected ErrInvalidKey, got %v", err)
	}

	truncated := *p
	truncated.Entries = p.Entries[:len(p.Entries)-1]
	if _, err := Decode(&truncated, dc); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("truncated: expected ErrDecryptionFailure, got %v", err)
	}
}

func TestDecode_MalformedEntries(t *testing.T) {
	p := &Payload{Scheme: SchemePlain, Entries: []byte{0x0a, 0x05, 0x01}}
	if _, err := Decode(p, DecodeContext{}); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}

	seeded := &Payload{Scheme: SchemePlain, SecretSeed: []byte{1}}
	if _, err := Decode(seeded, DecodeContext{}); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for seeded plain payload, got %v", err)
	}

	if _, err := UnmarshalPayload([]byte{0x1a, 0x10}); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	if _, err := Decode(nil, DecodeContext{}); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for nil payload, got %v", err)
	}
}

func TestEntriesPreserveEmptyEntries(t *testing.T) {
	in := Entries{{}, TextEntry("after empty")}
	out, err := UnmarshalEntries(MarshalEntries(in))
	if err != nil {
		t.Fatalf("UnmarshalEntries: %v", err)
	}
	if !entriesEqual(in, out) {
		t.Fatalf("entries mismatch: %+v", out)
	}
}
