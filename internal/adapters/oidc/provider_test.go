package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/harmonia-academy/harmonia-web/internal/ports"
)

// newDiscoveryServer serves a discovery document whose issuer is the server itself.
func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(DiscoveryDocument{
			Issuer:                srv.URL,
			AuthorizationEndpoint: "https://idp.example.com/auth",
			TokenEndpoint:         "https://idp.example.com/token",
			UserinfoEndpoint:      "https://idp.example.com/userinfo",
			JwksURI:               "https://idp.example.com/jwks",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func createTestProvider(t *testing.T, scope string) *Provider {
	t.Helper()
	srv := newDiscoveryServer(t)
	provider, err := NewProvider(ProviderConfig{
		ClientID:     "harmonia-web",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        scope,
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	return provider
}

func TestNewProvider_Success(t *testing.T) {
	provider := createTestProvider(t, "openid profile email")
	assert.Equal(t, "https://idp.example.com/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://idp.example.com/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, provider.config.Scopes)
}

func TestNewProvider_AddsOpenIDScope(t *testing.T) {
	provider := createTestProvider(t, "profile email")
	assert.Equal(t, []string{"openid", "profile", "email"}, provider.config.Scopes)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "s", RedirectURL: "http://x/cb", DiscoveryURL: "http://idp"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "c", RedirectURL: "http://x/cb", DiscoveryURL: "http://idp"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "c", ClientSecret: "s", DiscoveryURL: "http://idp"},
			errMsg: "redirect URL is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb"},
			errMsg: "discovery URL is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	provider := createTestProvider(t, "openid")

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: "/classes"})
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.Contains(t, authURL, "https://idp.example.com/auth")
	assert.Contains(t, authURL, "client_id=harmonia-web")
	assert.Contains(t, authURL, "state="+state)
	assert.Contains(t, authURL, "nonce="+nonce)

	_, _, _, err = provider.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	provider := createTestProvider(t, "openid")
	tests := []struct {
		input  ports.ExchangeInput
		errMsg string
	}{
		{ports.ExchangeInput{State: "s", Nonce: "n"}, "authorization code is required"},
		{ports.ExchangeInput{Code: "c", Nonce: "n"}, "state is required"},
		{ports.ExchangeInput{Code: "c", State: "s"}, "nonce is required"},
	}
	for _, tt := range tests {
		_, err := provider.Exchange(context.Background(), tt.input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.errMsg)
	}
}

func TestProvider_Exchange_TokenEndpointFailure(t *testing.T) {
	provider := createTestProvider(t, "openid")
	provider.config.Endpoint.TokenURL = "http://127.0.0.1:1/token"

	_, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestGenerateRandomString(t *testing.T) {
	a, err := generateRandomString(16)
	require.NoError(t, err)
	b, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)

	empty, err := generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	raw, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"other": "x"}))
	assert.ErrorContains(t, err, "missing id_token")

	_, err = getIDTokenFromToken(nil)
	assert.ErrorContains(t, err, "nil token")
}

func TestMapIDTokenClaims(t *testing.T) {
	f := mapIDTokenClaims(idTokenClaims{
		Sub:        "sub-1",
		Email:      "lan@harmonia.example",
		GivenName:  "Lan",
		FamilyName: "Nguyen",
		Groups:     []string{"office"},
		Roles:      []string{"teachers"},
	})
	assert.Equal(t, "sub-1", f.userID)
	assert.Equal(t, "lan@harmonia.example", f.email)
	assert.Equal(t, "Lan", f.givenName)
	assert.Equal(t, "Nguyen", f.familyName)
	assert.Equal(t, []string{"office", "teachers"}, f.groups)

	f = mapIDTokenClaims(idTokenClaims{Sub: "s", PreferredUsername: "minh@harmonia.example", Name: "Minh Tran Van"})
	assert.Equal(t, "minh@harmonia.example", f.email)
	assert.Equal(t, "Minh", f.givenName)
	assert.Equal(t, "Tran Van", f.familyName)
}

func TestFillFromUserInfoClaims_KeepsIDTokenValues(t *testing.T) {
	f := idFields{userID: "keep", email: "keep@example.com"}
	fillFromUserInfoClaims(&f, idTokenClaims{
		Sub:        "other",
		Email:      "other@example.com",
		GivenName:  "Hoa",
		FamilyName: "Le",
		Groups:     []string{"admins"},
	})
	assert.Equal(t, "keep", f.userID)
	assert.Equal(t, "keep@example.com", f.email)
	assert.Equal(t, "Hoa", f.givenName)
	assert.Equal(t, "Le", f.familyName)
	assert.Equal(t, []string{"admins"}, f.groups)
}
