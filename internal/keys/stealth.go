package keys

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// DeriveStealthPublicKey returns ephemeralPub + destPub.
func DeriveStealthPublicKey(ephemeralPub, destPub *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	if err := checkPublic(ephemeralPub, "ephemeral"); err != nil {
		return nil, err
	}
	if err := checkPublic(destPub, "destination"); err != nil {
		return nil, err
	}
	return addPoints(ephemeralPub, destPub)
}

// DeriveStealthPrivateKey returns (ephemeralPriv + destPriv) mod n, the
// private half of DeriveStealthPublicKey for a party holding both scalars.
func DeriveStealthPrivateKey(ephemeralPriv, destPriv *secp256k1.PrivateKey) (*secp256k1.PrivateKey, error) {
	if err := checkPrivate(ephemeralPriv, "ephemeral"); err != nil {
		return nil, err
	}
	if err := checkPrivate(destPriv, "destination"); err != nil {
		return nil, err
	}

	var sum secp256k1.ModNScalar
	sum.Set(&ephemeralPriv.Key).Add(&destPriv.Key)
	if sum.IsZero() {
		return nil, fmt.Errorf("%w: stealth scalar is zero", ErrInvalidKey)
	}
	return secp256k1.NewPrivateKey(&sum), nil
}
