package keys

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

const checksumLen = 4

func ParseNetwork(s string) (Network, error) {
	switch n := Network(strings.ToLower(strings.TrimSpace(s))); n {
	case Mainnet, Testnet:
		return n, nil
	default:
		return "", fmt.Errorf("unknown network %q (expected mainnet|testnet)", s)
	}
}

func (n Network) version() (byte, error) {
	switch n {
	case Mainnet:
		return 0x00, nil
	case Testnet:
		return 0x6f, nil
	default:
		return 0, fmt.Errorf("unknown network %q", string(n))
	}
}

// Address returns the legacy pay-to-pubkey-hash address of pub:
// base58(version || RIPEMD160(SHA256(compressed)) || checksum).
func Address(pub *secp256k1.PublicKey, net Network) (string, error) {
	if err := checkPublic(pub, "address"); err != nil {
		return "", err
	}
	ver, err := net.version()
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, 1+ripemd160.Size+checksumLen)
	buf = append(buf, ver)
	buf = append(buf, hash160(pub.SerializeCompressed())...)
	sum := doubleSHA256(buf)
	buf = append(buf, sum[:checksumLen]...)
	return base58.Encode(buf), nil
}

// CheckAddress reports whether addr is the address of pub on net.
func CheckAddress(addr string, pub *secp256k1.PublicKey, net Network) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("address %q: %w", addr, err)
	}
	if len(decoded) != 1+ripemd160.Size+checksumLen {
		return fmt.Errorf("address %q: unexpected length %d", addr, len(decoded))
	}
	body, chk := decoded[:len(decoded)-checksumLen], decoded[len(decoded)-checksumLen:]
	sum := doubleSHA256(body)
	if !bytes.Equal(sum[:checksumLen], chk) {
		return fmt.Errorf("address %q: bad checksum", addr)
	}
	want, err := Address(pub, net)
	if err != nil {
		return err
	}
	if want != addr {
		return fmt.Errorf("%w: address %q does not belong to public key", ErrInvalidKey, addr)
	}
	return nil
}

func hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	h := ripemd160.New()
	_, _ = h.Write(sha[:])
	return h.Sum(nil)
}

func doubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
