package keys

import "errors"

var (
	// ErrInvalidKey is returned for malformed point or scalar encodings,
	// keys of the wrong length, and derivations that land on the point at
	// infinity or the zero scalar.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidDigestLength is returned when a stamp digest is not exactly 32 bytes.
	ErrInvalidDigestLength = errors.New("invalid digest length")
)
