package relay

import (
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Layr-Labs/stampmsg/internal/payload"
)

func mustGenerate(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	return priv
}

func TestTextMessage_OpenBothSchemes(t *testing.T) {
	sender := mustGenerate(t)
	dest := mustGenerate(t)

	for _, scheme := range []payload.Scheme{payload.SchemePlain, payload.SchemeEncryptedDH} {
		t.Run(scheme.String(), func(t *testing.T) {
			msg, err := NewTextMessage("hello", sender, dest.PubKey(), scheme)
			if err != nil {
				t.Fatalf("NewTextMessage: %v", err)
			}
			parsed, err := UnmarshalMessage(msg.Marshal())
			if err != nil {
				t.Fatalf("UnmarshalMessage: %v", err)
			}
			entries, err := parsed.Open(dest)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if len(entries) != 1 || entries[0].Kind != payload.KindText || string(entries[0].Data) != "hello" {
				t.Fatalf("unexpected entries %+v", entries)
			}
		})
	}
}

func TestMessage_VerifyDetectsTampering(t *testing.T) {
	sender := mustGenerate(t)
	dest := mustGenerate(t)
	msg, err := NewTextMessage("hello", sender, dest.PubKey(), payload.SchemeEncryptedDH)
	if err != nil {
		t.Fatalf("NewTextMessage: %v", err)
	}
	if err := msg.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	tampered := *msg
	tampered.SerializedPayload = append([]byte(nil), msg.SerializedPayload...)
	tampered.SerializedPayload[len(tampered.SerializedPayload)-1] ^= 0x01
	if err := tampered.Verify(); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for modified payload, got %v", err)
	}

	impostor := *msg
	impostor.SenderPubKey = mustGenerate(t).PubKey().SerializeCompressed()
	if _, err := impostor.Open(dest); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for foreign sender, got %v", err)
	}
}

func TestMessage_StampKeysMatch(t *testing.T) {
	sender := mustGenerate(t)
	dest := mustGenerate(t)
	msg, err := NewTextMessage("pay me", sender, dest.PubKey(), payload.SchemeEncryptedDH)
	if err != nil {
		t.Fatalf("NewTextMessage: %v", err)
	}

	pub, err := msg.StampPublicKey(dest.PubKey())
	if err != nil {
		t.Fatalf("StampPublicKey: %v", err)
	}
	priv, err := msg.StampPrivateKey(dest)
	if err != nil {
		t.Fatalf("StampPrivateKey: %v", err)
	}
	if !priv.PubKey().IsEqual(pub) {
		t.Fatalf("stamp key pair mismatch")
	}
}

func TestNewMessage_RejectsUnknownScheme(t *testing.T) {
	sender := mustGenerate(t)
	if _, err := NewTextMessage("x", sender, sender.PubKey(), 7); !errors.Is(err, payload.ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
}
