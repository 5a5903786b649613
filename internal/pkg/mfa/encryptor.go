// Package mfa protects MFA material at rest with AES-256-GCM.
package mfa

// Encryptor encrypts and decrypts values bound to a Scope.
type Encryptor interface {
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES keys. For AES-256-GCM, keys must be 32 bytes.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
