package payload

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Layr-Labs/stampmsg/internal/keys"
)

const (
	ivSize  = 16
	keySize = 16
)

// Sealed is the output of Encrypt. EphemeralPub must accompany CipherText.
type Sealed struct {
	CipherText   []byte
	EphemeralPub *secp256k1.PublicKey
}

// Encrypt encrypts plaintext to destPub under a fresh ephemeral key drawn
// from crypto/rand.
func Encrypt(plaintext []byte, senderPriv *secp256k1.PrivateKey, destPub *secp256k1.PublicKey) (*Sealed, error) {
	return EncryptWithRand(rand.Reader, plaintext, senderPriv, destPub)
}

// EncryptWithRand is Encrypt with an explicit entropy source. r must be a
// CSPRNG: a repeated ephemeral key repeats both IV and key.
func EncryptWithRand(r io.Reader, plaintext []byte, senderPriv *secp256k1.PrivateKey, destPub *secp256k1.PublicKey) (*Sealed, error) {
	if senderPriv == nil {
		return nil, fmt.Errorf("%w: nil sender private key", keys.ErrInvalidKey)
	}
	eph, err := secp256k1.GeneratePrivateKeyFromRand(r)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	defer eph.Zero()

	iv, key, err := deriveIVAndKey(eph, destPub, senderPriv.PubKey())
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	ct := pkcs7Pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, ct)
	return &Sealed{CipherText: ct, EphemeralPub: eph.PubKey()}, nil
}

// Decrypt reverses Encrypt. senderPub is the sender's identity key and
// ephemeralPub the key carried with the ciphertext.
func Decrypt(cipherText []byte, destPriv *secp256k1.PrivateKey, senderPub, ephemeralPub *secp256k1.PublicKey) ([]byte, error) {
	if len(cipherText) == 0 || len(cipherText)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of %d", ErrDecryptionFailure, len(cipherText), aes.BlockSize)
	}
	iv, key, err := deriveIVAndKey(destPriv, ephemeralPub, senderPub)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	pt := make([]byte, len(cipherText))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, cipherText)
	return pkcs7Unpad(pt, aes.BlockSize)
}

// deriveIVAndKey hashes the compressed shared point; the first half of the
// digest is the IV and the second half the AES-128 key.
func deriveIVAndKey(priv *secp256k1.PrivateKey, pub, offset *secp256k1.PublicKey) (iv, key []byte, err error) {
	point, err := keys.SharedPoint(priv, pub, offset)
	if err != nil {
		return nil, nil, err
	}
	digest := sha256.Sum256(point.SerializeCompressed())
	return digest[:ivSize], digest[ivSize : ivSize+keySize], nil
}
