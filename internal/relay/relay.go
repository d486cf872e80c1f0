// Package relay holds the relay and keyserver wire structures, the message
// constructors built on the payload codec, and an HTTP adapter for both
// services.
package relay

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMalformedMessage is returned when a relay structure fails to parse.
	ErrMalformedMessage = errors.New("malformed relay message")

	// ErrInvalidSignature is returned when a message's digest or signature
	// does not match its payload and sender key.
	ErrInvalidSignature = errors.New("invalid message signature")
)

// FetchFilter narrows a Fetch. A nil filter returns everything since the
// start time.
type FetchFilter struct {
	// Until is an exclusive upper bound on message timestamps; zero means none.
	Until int64
}

// Relay stores and forwards messages for addresses.
type Relay interface {
	Push(ctx context.Context, destAddress string, set *MessageSet) error
	Fetch(ctx context.Context, myAddress, token string, since int64, filter *FetchFilter) (*MessagePage, error)
	GetFilter(ctx context.Context, address string) (*Filters, error)
}

// Keyserver publishes signed address metadata (public key and profile).
type Keyserver interface {
	Sample(ctx context.Context, address string) (*AddressMetadata, error)
}

// StatusError is returned by HTTPClient for non-2xx responses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}
