package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// PKCE code challenge methods from RFC 7636
const (
	CodeChallengeMethodS256  = "S256"
	CodeChallengeMethodPlain = "plain"
)

// VerifyCodeChallenge checks that the code verifier presented at exchange
// time matches the challenge the authorization code was bound to.
func VerifyCodeChallenge(codeVerifier, codeChallenge, codeChallengeMethod string) error {
	var expected string
	switch codeChallengeMethod {
	case CodeChallengeMethodS256:
		hash := sha256.Sum256([]byte(codeVerifier))
		expected = base64.RawURLEncoding.EncodeToString(hash[:])
	case CodeChallengeMethodPlain:
		expected = codeVerifier
	default:
		return ErrInvalidCodeChallengeMethod
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(codeChallenge)) != 1 {
		return ErrInvalidCodeChallenge
	}
	return nil
}
