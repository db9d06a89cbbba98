// Package crypto provides token and secret generation for the Meridian
// back-office.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
)

// Token and secret sizes
const (
	// TokenSize is the number of random bytes in a session or CSRF
	// token. Tokens are hex-encoded, so the wire form is twice as long.
	TokenSize = 32

	// TwoFactorSecretLength is the length of a generated authenticator
	// secret in base32 characters.
	TwoFactorSecretLength = 16
)

// base32Chars is the RFC 4648 base32 alphabet used by authenticator apps.
const base32Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// GenerateToken generates a random 32-byte token encoded as 64 hex
// characters. Used for session identifiers and CSRF tokens.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateTwoFactorSecret generates a 16-character base32 secret for
// authenticator apps.
func GenerateTwoFactorSecret() (string, error) {
	randomBytes := make([]byte, TwoFactorSecretLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}

	result := make([]byte, TwoFactorSecretLength)
	for i := 0; i < TwoFactorSecretLength; i++ {
		result[i] = base32Chars[int(randomBytes[i])%len(base32Chars)]
	}
	return string(result), nil
}

// OTPAuthURI builds the otpauth:// provisioning URI that authenticator
// apps scan from a QR code.
func OTPAuthURI(issuer, account, secret string) string {
	label := url.PathEscape(issuer + ":" + account)
	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", issuer)
	return "otpauth://totp/" + label + "?" + params.Encode()
}

// ConstantTimeEquals compares two strings in constant time. Used for
// CSRF token verification.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
