package payload

import "errors"

var (
	// ErrUnsupportedScheme is returned when a payload's scheme is neither
	// SchemePlain nor SchemeEncryptedDH.
	ErrUnsupportedScheme = errors.New("unsupported payload scheme")

	// ErrDecryptionFailure is returned when the ciphertext is not block
	// aligned or its padding is invalid after decryption.
	ErrDecryptionFailure = errors.New("decryption failure")

	// ErrMalformedPayload is returned when a payload or entries blob fails to
	// deserialize, or an entry's content cannot be interpreted.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrMissingEntry is returned when an expected content kind is absent.
	ErrMissingEntry = errors.New("missing entry")
)
