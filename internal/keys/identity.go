package keys

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"
)

const identityInfoV1 = "stampmsg/identity/v1"

// Identity is a participant's long-lived key pair.
type Identity struct {
	Priv *secp256k1.PrivateKey
	Pub  *secp256k1.PublicKey

	// Address is the base58check address of Pub on Network.
	Address string
	Network Network
}

// NewMnemonic returns a fresh 12-word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("bip39 entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// IdentityFromMnemonic deterministically derives the identity key pair for a
// BIP-39 mnemonic.
func IdentityFromMnemonic(mnemonic string, net Network) (*Identity, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return nil, fmt.Errorf("MNEMONIC is required")
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("MNEMONIC is not a valid BIP-39 mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")
	sk := hkdfExpand32(seed, []byte(identityInfoV1))
	priv, err := ParsePrivateKey(sk[:])
	if err != nil {
		return nil, fmt.Errorf("identity key: %w", err)
	}
	return NewIdentity(priv, net)
}

// NewIdentity wraps an existing private key.
func NewIdentity(priv *secp256k1.PrivateKey, net Network) (*Identity, error) {
	if err := checkPrivate(priv, "identity"); err != nil {
		return nil, err
	}
	pub := priv.PubKey()
	addr, err := Address(pub, net)
	if err != nil {
		return nil, err
	}
	return &Identity{
		Priv:    priv,
		Pub:     pub,
		Address: addr,
		Network: net,
	}, nil
}

func hkdfExpand32(seed, info []byte) [32]byte {
	rd := hkdf.New(sha256.New, seed, nil, info)
	var out [32]byte
	_, _ = rd.Read(out[:])
	return out
}
