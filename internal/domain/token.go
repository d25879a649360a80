package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// opaqueTokenBytes is the entropy of every state nonce, authorization code,
// access token and refresh token. 32 bytes is double the 128-bit minimum of
// RFC 6749 §10.10.
const opaqueTokenBytes = 32

// NewOpaqueToken returns a URL-safe random string with no decodable internal
// structure. Validity of an opaque token is determined solely by store lookup.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate opaque token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
