package payload

import "fmt"

// Profile is the contact card published in an address's metadata.
type Profile struct {
	Name   string
	Bio    string
	Avatar Avatar
}

// ExtractProfile reads the first vcard and avatar entries.
func ExtractProfile(entries Entries) (*Profile, error) {
	cardEntry, ok := entries.Find(KindVCard)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, KindVCard)
	}
	avatarEntry, ok := entries.Find(KindAvatar)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, KindAvatar)
	}

	c, _, err := Interpret(cardEntry)
	if err != nil {
		return nil, err
	}
	a, _, err := Interpret(avatarEntry)
	if err != nil {
		return nil, err
	}
	card := c.(Card)
	return &Profile{
		Name:   card.Name,
		Bio:    card.Bio,
		Avatar: a.(Avatar),
	}, nil
}
