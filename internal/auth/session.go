// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// privateKey and publicKey are used for signing and verifying socket handshake tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long issued tokens stay valid. Zero means no exp claim.
	tokenTTL time.Duration
)

// Claims is what the core learns from a verified token: an external subject and,
// optionally, the name the issuer knows the user by.
type Claims struct {
	Subject string
	Name    string
}

func parseTokenExpireTime(raw string) (time.Duration, error) {
	if raw == "never" || raw == "0" || raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token expire time %q: %w", raw, err)
	}
	return d, nil
}

// Init generates a fresh ed25519 key pair at runtime and sets the token lifetime.
func Init(expire string) error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	tokenTTL, err = parseTokenExpireTime(expire)
	return err
}

// InitFromPath reads ed25519 private/public keys from file and sets the token lifetime.
func InitFromPath(privatePath, publicPath, expire string) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	tokenTTL, err = parseTokenExpireTime(expire)
	return err
}

// CreateJWT signs a token with "sub" = subject and an optional "name".
func CreateJWT(subject, name string) (string, error) {
	if privateKey == nil {
		return "", errors.New("auth keys not initialized")
	}
	claims := jwt.MapClaims{
		"sub": subject,
	}
	if name != "" {
		claims["name"] = name
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a token string and returns its claims.
func AuthenticateJWT(tokenString string) (Claims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return Claims{}, fmt.Errorf("invalid token")
	}

	mc, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, fmt.Errorf("missing sub in jwt")
	}
	name, _ := mc["name"].(string)
	return Claims{Subject: sub, Name: name}, nil
}
