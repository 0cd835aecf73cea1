// Package service declares the collaborators the authentication use cases
// depend on: hashing, tokens, verification codes, notification and time.
package service

// PasswordHasher stores passwords as salted one-way digests.
type PasswordHasher interface {
	// Hash returns a fresh salted digest. It fails for passwords the algorithm
	// cannot represent in full (bcrypt: over 72 bytes) instead of truncating them.
	Hash(password string) (string, error)

	// Check reports whether password produces hash. A malformed hash never matches.
	Check(password, hash string) bool
}
