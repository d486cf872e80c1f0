package payload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
)

// Known entry kinds.
const (
	KindText   = "text"
	KindVCard  = "vcard"
	KindAvatar = "avatar"
)

// Content is the interpreted form of an Entry: Text, Card or Avatar.
type Content interface {
	Kind() string
}

type Text struct {
	Body string
}

// Card holds the fields read from a vcard entry.
type Card struct {
	Name string
	Bio  string
}

// Avatar is an image entry. MIMEType comes from the entry's first header.
type Avatar struct {
	MIMEType string
	Data     []byte
}

func (Text) Kind() string   { return KindText }
func (Card) Kind() string   { return KindVCard }
func (Avatar) Kind() string { return KindAvatar }

// DataURL returns a self-contained image reference.
func (a Avatar) DataURL() string {
	return "data:" + a.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Interpret converts one entry. ok is false for kinds this client does not
// understand; those are skipped, not errors.
func Interpret(e *Entry) (c Content, ok bool, err error) {
	switch e.Kind {
	case KindText:
		return Text{Body: strings.ToValidUTF8(string(e.Data), "\uFFFD")}, true, nil
	case KindVCard:
		card, err := parseCard(e.Data)
		if err != nil {
			return nil, true, err
		}
		return card, true, nil
	case KindAvatar:
		if len(e.Headers) == 0 {
			return nil, true, fmt.Errorf("%w: avatar entry has no MIME type header", ErrMalformedPayload)
		}
		return Avatar{MIMEType: string(e.Headers[0].Value), Data: e.Data}, true, nil
	default:
		return nil, false, nil
	}
}

// Contents interprets entries in order, dropping unknown kinds.
func Contents(entries Entries) ([]Content, error) {
	out := make([]Content, 0, len(entries))
	for i := range entries {
		c, ok, err := Interpret(&entries[i])
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entries[i].Kind, err)
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func parseCard(data []byte) (Card, error) {
	card, err := vcard.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		return Card{}, fmt.Errorf("%w: vcard: %v", ErrMalformedPayload, err)
	}
	return Card{
		Name: card.PreferredValue(vcard.FieldFormattedName),
		Bio:  card.PreferredValue(vcard.FieldNote),
	}, nil
}

// TextEntry builds a text entry.
func TextEntry(text string) Entry {
	return Entry{Kind: KindText, Data: []byte(text)}
}

// AvatarEntry builds an avatar entry with the MIME type as its first header.
func AvatarEntry(mimeType string, data []byte) Entry {
	return Entry{
		Kind:    KindAvatar,
		Headers: []Header{{Name: "type", Value: []byte(mimeType)}},
		Data:    data,
	}
}

// CardEntry builds a vcard entry holding a display name and note.
func CardEntry(name, bio string) (Entry, error) {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, "4.0")
	card.SetValue(vcard.FieldFormattedName, name)
	if bio != "" {
		card.SetValue(vcard.FieldNote, bio)
	}
	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return Entry{}, fmt.Errorf("encode vcard: %w", err)
	}
	return Entry{Kind: KindVCard, Data: buf.Bytes()}, nil
}
