// package auth implements the OAuth2 Authorization Code + PKCE flow against Spotify.
//
// The pieces compose bottom-up: a [Challenge] pair proves possession of the
// code, an [Exchanger] talks to the token endpoint, a [Store] persists the
// refresh credential, and [Authorizer] ties them together with fallback from
// the refresh grant to the interactive browser flow.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	verifierLength   = 64
	verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Challenge is a PKCE verifier/challenge pair. The verifier stays local;
// the challenge is sent ahead to the authorization server.
type Challenge struct {
	Verifier  string
	Challenge string
}

// NewChallenge generates a fresh PKCE pair: a 64-character verifier drawn
// from the alphanumeric alphabet using crypto/rand, and its S256 challenge.
func NewChallenge() (*Challenge, error) {
	buf := make([]byte, verifierLength)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	chars := make([]byte, verifierLength)
	for i, b := range buf {
		chars[i] = verifierAlphabet[int(b)%len(verifierAlphabet)]
	}
	verifier := string(chars)

	return &Challenge{Verifier: verifier, Challenge: DeriveChallenge(verifier)}, nil
}

// DeriveChallenge computes the S256 code challenge for a verifier:
// SHA-256, then URL-safe base64 without padding.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
