package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"authgate/config"
	"authgate/internal/domain/service"
	"authgate/internal/errors"
)

const defaultCodeBytes = 32

// codeGenerator issues URL-safe random codes and stores only their SHA-256 digest.
type codeGenerator struct {
	size int
}

// NewCodeGenerator builds a generator producing cfg.Verification.CodeBytes bytes of entropy per code.
func NewCodeGenerator(cfg *config.Config) service.VerificationCodeGenerator {
	size := defaultCodeBytes
	if cfg != nil && cfg.Verification != nil && cfg.Verification.CodeBytes > 0 {
		size = cfg.Verification.CodeBytes
	}

	return &codeGenerator{size: size}
}

// Generate returns a base64url code and its hex SHA-256 digest.
func (g *codeGenerator) Generate() (code string, digest string, err error) {
	raw := make([]byte, g.size)
	if _, err := rand.Read(raw); err != nil {
		return "", "", errors.Wrap(err, "read random code")
	}

	code = base64.RawURLEncoding.EncodeToString(raw)

	return code, digestCode(code), nil
}

// Matches compares digests in constant time.
func (g *codeGenerator) Matches(code, digest string) bool {
	if code == "" || digest == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(digestCode(code)), []byte(digest)) == 1
}

func digestCode(code string) string {
	sum := sha256.Sum256([]byte(code))

	return hex.EncodeToString(sum[:])
}
