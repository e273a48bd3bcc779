package oauth_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracesphere/campusasset/internal/auth/oauth"
)

func testProvider() oauth.Provider {
	return oauth.Provider{
		Name:        "google",
		ClientID:    "client-123",
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		Scopes:      []string{"openid", "email", "profile"},
		AllowSignUp: true,
	}
}

func TestBeginBuildsAuthorizationURL(t *testing.T) {
	svc := oauth.NewService([]oauth.Provider{testProvider()})

	result, err := svc.Begin(context.Background(), "google", "https://console.local/auth/oauth/google")
	require.NoError(t, err)
	require.NotEmpty(t, result.State)
	require.NotEmpty(t, result.CodeVerifier)

	parsed, err := url.Parse(result.URL)
	require.NoError(t, err)
	query := parsed.Query()
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "client-123", query.Get("client_id"))
	assert.Equal(t, "https://console.local/auth/oauth/google", query.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", query.Get("scope"))
	assert.Equal(t, result.State, query.Get("state"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))

	sum := sha256.Sum256([]byte(result.CodeVerifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), query.Get("code_challenge"))
}

func TestBeginUnknownProvider(t *testing.T) {
	svc := oauth.NewService([]oauth.Provider{testProvider()})

	_, err := svc.Begin(context.Background(), "github", "https://console.local/auth/oauth/github")
	assert.ErrorIs(t, err, oauth.ErrProviderNotFound)
}

func TestBeginProviderWithoutCredentials(t *testing.T) {
	p := testProvider()
	p.ClientID = ""
	svc := oauth.NewService([]oauth.Provider{p})

	_, err := svc.Begin(context.Background(), "google", "https://console.local/auth/oauth/google")
	assert.ErrorIs(t, err, oauth.ErrProviderDisabled)
}

func TestExchangeFetchesIdentity(t *testing.T) {
	var tokenForm url.Values
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		tokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at-456"})
	}))
	defer tokenServer.Close()

	userinfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-456", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   "google-uid-1",
			"email": "staff@campus.edu",
			"name":  "Campus Staff",
		})
	}))
	defer userinfoServer.Close()

	p := testProvider()
	p.TokenURL = tokenServer.URL
	p.UserInfoURL = userinfoServer.URL
	svc := oauth.NewService([]oauth.Provider{p})

	result, err := svc.Exchange(context.Background(), "google", oauth.ExchangeRequest{
		Code:         "auth-code",
		RedirectURI:  "https://console.local/auth/oauth/google",
		CodeVerifier: "verifier-789",
	})
	require.NoError(t, err)

	assert.Equal(t, "google", result.Provider)
	assert.True(t, result.AllowSignUp)
	assert.Equal(t, "google-uid-1", result.Identity.ExternalID)
	assert.Equal(t, "staff@campus.edu", result.Identity.Email)
	assert.Equal(t, "Campus Staff", result.Identity.DisplayName)

	assert.Equal(t, "authorization_code", tokenForm.Get("grant_type"))
	assert.Equal(t, "auth-code", tokenForm.Get("code"))
	assert.Equal(t, "verifier-789", tokenForm.Get("code_verifier"))
}

func TestExchangeRejectsTokenFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	p := testProvider()
	p.TokenURL = tokenServer.URL
	svc := oauth.NewService([]oauth.Provider{p})

	_, err := svc.Exchange(context.Background(), "google", oauth.ExchangeRequest{
		Code:        "bad",
		RedirectURI: "https://console.local/auth/oauth/google",
	})
	assert.ErrorIs(t, err, oauth.ErrUnauthorized)
}

func TestExchangeWithoutCode(t *testing.T) {
	svc := oauth.NewService([]oauth.Provider{testProvider()})

	_, err := svc.Exchange(context.Background(), "google", oauth.ExchangeRequest{})
	assert.ErrorIs(t, err, oauth.ErrInvalidRequest)
}
