// Package payload encrypts, encodes and interprets message payloads.
//
// A payload carries a serialized Entries list either in the clear
// (SchemePlain) or encrypted to the recipient (SchemeEncryptedDH). Encryption
// uses a fresh secp256k1 ephemeral key per message:
//
//	shared = compress(destPub*ephemeralPriv + senderPub)
//	digest = SHA256(shared)
//	AES-128-CBC(key = digest[16:32], iv = digest[0:16]), PKCS#7 padding
//
// The ephemeral public key travels as the payload's secret seed. The receiver
// recomputes the same point as ephemeralPub*destPriv + senderPub.
//
// The ciphertext carries no authentication tag. A modified ciphertext either
// fails padding removal or decrypts to different plaintext; nothing detects
// the modification otherwise. Adding a tag requires a new scheme value.
package payload
