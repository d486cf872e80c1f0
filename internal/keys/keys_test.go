package keys

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestParsePublicKey(t *testing.T) {
	priv := mustGenerate(t)
	compressed := priv.PubKey().SerializeCompressed()

	pub, err := ParsePublicKey(compressed)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if !pub.IsEqual(priv.PubKey()) {
		t.Fatalf("parsed key mismatch")
	}

	bad := [][]byte{
		nil,
		compressed[:32],
		priv.PubKey().SerializeUncompressed(),
		append([]byte{0x05}, compressed[1:]...),
		append([]byte{0x02}, bytes.Repeat([]byte{0xff}, 32)...),
	}
	for i, b := range bad {
		if _, err := ParsePublicKey(b); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("case %d: expected ErrInvalidKey, got %v", i, err)
		}
	}
}

func TestParsePrivateKey(t *testing.T) {
	priv := mustGenerate(t)
	got, err := ParsePrivateKey(priv.Serialize())
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	if !got.PubKey().IsEqual(priv.PubKey()) {
		t.Fatalf("parsed key mismatch")
	}

	order := secp256k1.Params().N.FillBytes(make([]byte, 32))
	for name, b := range map[string][]byte{
		"zero":  make([]byte, 32),
		"order": order,
		"short": make([]byte, 31),
	} {
		if _, err := ParsePrivateKey(b); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("%s: expected ErrInvalidKey, got %v", name, err)
		}
	}
}

func TestAddressKnownVector(t *testing.T) {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	pub := secp256k1.NewPrivateKey(&one).PubKey()

	addr, err := Address(pub, Mainnet)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if addr != "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH" {
		t.Fatalf("unexpected address %s", addr)
	}
	if err := CheckAddress(addr, pub, Mainnet); err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}

	testAddr, err := Address(pub, Testnet)
	if err != nil {
		t.Fatalf("Address (testnet): %v", err)
	}
	if !strings.HasPrefix(testAddr, "m") && !strings.HasPrefix(testAddr, "n") {
		t.Fatalf("unexpected testnet address %s", testAddr)
	}
	if err := CheckAddress(testAddr, pub, Mainnet); err == nil {
		t.Fatalf("expected network mismatch to fail")
	}
}

func TestIdentityFromMnemonic(t *testing.T) {
	a, err := IdentityFromMnemonic(testMnemonic, Testnet)
	if err != nil {
		t.Fatalf("IdentityFromMnemonic: %v", err)
	}
	b, err := IdentityFromMnemonic("  "+testMnemonic+"\n", Testnet)
	if err != nil {
		t.Fatalf("IdentityFromMnemonic: %v", err)
	}
	if !a.Pub.IsEqual(b.Pub) || a.Address != b.Address {
		t.Fatalf("identity derivation is not deterministic")
	}
	if !a.Priv.PubKey().IsEqual(a.Pub) {
		t.Fatalf("identity pair mismatch")
	}

	if _, err := IdentityFromMnemonic("abandon abandon", Testnet); err == nil {
		t.Fatalf("expected invalid mnemonic to fail")
	}
	if _, err := IdentityFromMnemonic(testMnemonic, Network("regtest")); err == nil {
		t.Fatalf("expected unknown network to fail")
	}
}

func TestNewMnemonic(t *testing.T) {
	m, err := NewMnemonic()
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	if len(strings.Fields(m)) != 12 {
		t.Fatalf("expected 12 words, got %q", m)
	}
	if _, err := IdentityFromMnemonic(m, Mainnet); err != nil {
		t.Fatalf("IdentityFromMnemonic: %v", err)
	}
}

func TestSignAndVerifyDigest(t *testing.T) {
	priv := mustGenerate(t)
	digest := PayloadDigest([]byte("payload"))

	sig, err := SignDigest(priv, digest[:])
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	ok, err := VerifyDigest(priv.PubKey(), digest[:], sig)
	if err != nil || !ok {
		t.Fatalf("expected signature to verify (ok=%v err=%v)", ok, err)
	}

	other := PayloadDigest([]byte("other"))
	ok, err = VerifyDigest(priv.PubKey(), other[:], sig)
	if err != nil || ok {
		t.Fatalf("expected signature over other digest to fail (ok=%v err=%v)", ok, err)
	}

	ok, err = VerifyDigest(mustGenerate(t).PubKey(), digest[:], sig)
	if err != nil || ok {
		t.Fatalf("expected foreign key to fail (ok=%v err=%v)", ok, err)
	}
}
