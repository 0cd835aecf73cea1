package service

// VerificationCodeGenerator creates out-of-band codes and checks them against stored digests.
type VerificationCodeGenerator interface {
	// Generate returns a fresh URL-safe code and the digest to store in its place.
	Generate() (code string, digest string, err error)

	// Matches reports whether code hashes to digest, in constant time.
	Matches(code, digest string) bool
}
