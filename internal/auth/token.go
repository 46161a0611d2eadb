package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// opaqueTokenLength is the entropy of verification and reset tokens in bytes.
const opaqueTokenLength = 32

// NewOpaqueToken returns a URL-safe random token for single-use flows
// (email verification, password reset).
func NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
