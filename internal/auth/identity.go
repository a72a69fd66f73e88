// internal/auth/identity.go
package auth

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

const (
	// FallbackName replaces display names that are empty or look like an email address.
	FallbackName = "Player"
	// MaxNameLength is the rune limit for display names.
	MaxNameLength = 24

	playerIDPrefix = "p_"
	playerIDLength = 24
)

// PlayerID derives the opaque id used inside rooms from an external identity.
// The mapping is one-way and stable for the lifetime of the process key.
func PlayerID(external string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(external))))
	return playerIDPrefix + hex.EncodeToString(sum[:])[:playerIDLength]
}

// SanitizeDisplayName trims, strips control characters and truncates name. A name
// that is empty afterwards or contains '@' becomes FallbackName.
func SanitizeDisplayName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || strings.Contains(cleaned, "@") {
		return FallbackName
	}
	if runes := []rune(cleaned); len(runes) > MaxNameLength {
		cleaned = strings.TrimSpace(string(runes[:MaxNameLength]))
	}
	return cleaned
}
