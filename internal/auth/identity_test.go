package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerIDIsStableAndOpaque(t *testing.T) {
	a := PlayerID("alice@example.com")
	assert.Equal(t, a, PlayerID("  Alice@Example.com "))
	assert.NotEqual(t, a, PlayerID("bob@example.com"))
	assert.True(t, strings.HasPrefix(a, "p_"))
	assert.Len(t, a, 2+24)
	assert.NotContains(t, a, "@")
	assert.NotContains(t, a, "alice")
}

func TestSanitizeDisplayName(t *testing.T) {
	cases := map[string]string{
		"Alice":                    "Alice",
		"  Bob  ":                  "Bob",
		"alice@example.com":        FallbackName,
		"":                         FallbackName,
		"\t\n":                     FallbackName,
		"Ca\x00rol":                "Carol",
		strings.Repeat("x", 40):    strings.Repeat("x", MaxNameLength),
		"ÁngelÁngelÁngelÁngelÁngel": "ÁngelÁngelÁngelÁngelÁnge",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeDisplayName(in), "input %q", in)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	require.NoError(t, Init("1h"))

	token, err := CreateJWT("user-123", "Dana")
	require.NoError(t, err)

	claims, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "Dana", claims.Name)

	_, err = AuthenticateJWT(token + "x")
	assert.Error(t, err)

	assert.Error(t, Init("soon"))
}
