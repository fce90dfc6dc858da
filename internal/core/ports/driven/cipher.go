package driven

// CredentialCipher encrypts credential payloads before they reach the
// registry and decrypts them for connectors. Encryption is symmetric
// and authenticated; decryption of a tampered or foreign-key blob fails
// with an IntegrityError.
type CredentialCipher interface {
	// Encrypt seals a plaintext credential payload into an opaque blob.
	Encrypt(plain string) (string, error)

	// Decrypt opens a blob produced by Encrypt. Returns an
	// IntegrityError when the blob fails authentication.
	Decrypt(blob string) (string, error)
}
