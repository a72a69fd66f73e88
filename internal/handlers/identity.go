// internal/handlers/identity.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/tabletop/internal/auth"
	"github.com/jason-s-yu/tabletop/internal/models"
	log "github.com/sirupsen/logrus"
)

var errMissingToken = errors.New("missing auth token")

// NameLookup resolves an account's display name. database.UserStore implements it.
type NameLookup interface {
	DisplayName(ctx context.Context, id uuid.UUID) (string, error)
}

// resolvePlayer authenticates the handshake token (auth_token cookie, or the token
// query parameter for clients that cannot set cookies) and derives the player.
// The raw subject never leaves this function; only its hash does.
func resolvePlayer(ctx context.Context, r *http.Request, names NameLookup) (models.Player, error) {
	token := extractCookieToken(r.Header.Get("Cookie"), "auth_token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return models.Player{}, errMissingToken
	}
	claims, err := auth.AuthenticateJWT(token)
	if err != nil {
		return models.Player{}, err
	}

	name := claims.Name
	if names != nil {
		if id, err := uuid.Parse(claims.Subject); err == nil {
			lookupCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			stored, err := names.DisplayName(lookupCtx, id)
			cancel()
			if err == nil {
				name = stored
			} else {
				log.WithError(err).Debug("display name lookup failed, using token name")
			}
		}
	}

	return models.Player{
		ID:          auth.PlayerID(claims.Subject),
		DisplayName: auth.SanitizeDisplayName(name),
	}, nil
}
