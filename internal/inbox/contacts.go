package inbox

import (
	"context"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Layr-Labs/stampmsg/internal/keys"
	"github.com/Layr-Labs/stampmsg/internal/payload"
	"github.com/Layr-Labs/stampmsg/internal/relay"
)

// Contact is what the client knows about a peer address.
type Contact struct {
	Address string
	Name    string
	Bio     string
	// AvatarURL is a data: URL.
	AvatarURL string
	PubKey    *secp256k1.PublicKey

	// AcceptancePrice is nil when the relay filter could not be read.
	AcceptancePrice *uint64
	Loading         bool
}

// LoadingContact is the placeholder stored while a profile is fetched.
func LoadingContact(addr string) Contact {
	return Contact{Address: addr, Name: "Loading...", Loading: true}
}

// FetchContact samples addr's metadata from ks and its acceptance price from
// r. The metadata public key must hash to addr. A failed price lookup leaves
// AcceptancePrice nil and is not an error.
func FetchContact(ctx context.Context, ks relay.Keyserver, r relay.Relay, addr string, net keys.Network) (*Contact, error) {
	md, err := ks.Sample(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("sample metadata for %s: %w", addr, err)
	}
	pub, err := keys.ParsePublicKey(md.PubKey)
	if err != nil {
		return nil, fmt.Errorf("metadata public key for %s: %w", addr, err)
	}
	if err := keys.CheckAddress(addr, pub, net); err != nil {
		return nil, err
	}

	mp, err := relay.UnmarshalMetadataPayload(md.SerializedPayload)
	if err != nil {
		return nil, err
	}
	profile, err := payload.ExtractProfile(mp.Entries)
	if err != nil {
		return nil, fmt.Errorf("profile for %s: %w", addr, err)
	}

	c := &Contact{
		Address:   addr,
		Name:      profile.Name,
		Bio:       profile.Bio,
		AvatarURL: profile.Avatar.DataURL(),
		PubKey:    pub,
	}
	if r != nil {
		if f, err := r.GetFilter(ctx, addr); err == nil && f.PriceFilter != nil {
			price := f.PriceFilter.AcceptancePrice
			c.AcceptancePrice = &price
		}
	}
	return c, nil
}
