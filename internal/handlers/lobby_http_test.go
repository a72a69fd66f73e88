package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/match"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLobbies(t *testing.T) {
	reg := match.NewRegistry()
	for i, name := range []string{"Ana", "Ben", "Cy"} {
		p := models.Player{ID: "p_" + name, DisplayName: name}
		_, err := reg.Create(game.Connect4, p, match.CreateOptions{MaxPlayers: 2}, nil)
		require.NoError(t, err, "room %d", i)
	}
	h := ListLobbiesHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/lobby/list?game=connect4&page=2&size=2", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page lobbyPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, game.Connect4, page.Game)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Entries, 1)
	assert.NotContains(t, w.Body.String(), "p_")
}

func TestListLobbiesDefaults(t *testing.T) {
	h := ListLobbiesHandler(match.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/lobby/list?game=uno&size=500&page=-3", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page lobbyPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, maxPageSize, page.Size)
	assert.Empty(t, page.Entries)
}

func TestListLobbiesRejects(t *testing.T) {
	h := ListLobbiesHandler(match.NewRegistry())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lobby/list?game=chess", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lobby/list?game=uno", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListLobbiesHugePage(t *testing.T) {
	h := ListLobbiesHandler(match.NewRegistry())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lobby/list?game=uno&page=184467440737095516&size=100", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body lobbyPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Entries)
	assert.Zero(t, body.Total)
}

func TestExtractCookieToken(t *testing.T) {
	assert.Equal(t, "abc", extractCookieToken("theme=dark; auth_token=abc; lang=en", "auth_token"))
	assert.Equal(t, "abc", extractCookieToken("auth_token=abc", "auth_token"))
	assert.Equal(t, "", extractCookieToken("old_auth_token=zzz", "auth_token"))
	assert.Equal(t, "", extractCookieToken("", "auth_token"))
}
