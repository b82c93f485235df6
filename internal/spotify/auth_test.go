package spotify

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redirectURI = "http://127.0.0.1:8888/callback"

func TestAuthorizeURL(t *testing.T) {
	client := newTestClient(t, validStore(), nil, nil)
	client.accountsURL = "https://accounts.example"

	raw := client.AuthorizeURL(redirectURI)
	assert.True(t, strings.HasPrefix(raw, "https://accounts.example/authorize?"), raw)
	assert.Contains(t, raw, "client_id=client-id")
	assert.Contains(t, raw, "response_type=code")
	assert.Contains(t, raw, "scope=user-modify-playback-state")
}

func TestAuthorize_ExchangesPastedCode(t *testing.T) {
	store := validStore()
	store.creds.RefreshToken = ""

	accounts := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "pasted-code", r.Form.Get("code"))
		assert.Equal(t, redirectURI, r.Form.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","token_type":"Bearer","scope":"user-modify-playback-state","expires_in":3600,"refresh_token":"new-refresh"}`))
	})
	client := newTestClient(t, store, nil, accounts)

	var out bytes.Buffer
	err := client.Authorize(context.Background(), strings.NewReader("pasted-code\n"), &out, redirectURI)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "/authorize?", "the authorization URL must be printed")
	assert.Equal(t, []string{"new-refresh"}, store.savedTokens)
}

func TestAuthorize_EmptyCode(t *testing.T) {
	client := newTestClient(t, validStore(), nil, nil)

	err := client.Authorize(context.Background(), strings.NewReader("\n"), &bytes.Buffer{}, redirectURI)
	require.Error(t, err)
}

func TestExchange_InsufficientScope(t *testing.T) {
	store := validStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","scope":"user-read-email","expires_in":3600,"refresh_token":"new-refresh"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, store, nil, nil)
	client.accountsURL = srv.URL

	err := client.Exchange(context.Background(), "pasted-code", redirectURI)
	require.Error(t, err)
	assert.Empty(t, store.savedTokens, "a token with the wrong scope must not be persisted")
}

func TestScopesCover(t *testing.T) {
	assert.True(t, scopesCover("user-modify-playback-state", Scope))
	assert.True(t, scopesCover("user-read-email user-modify-playback-state", Scope))
	assert.False(t, scopesCover("user-read-email", Scope))
	assert.False(t, scopesCover("", Scope))
}
