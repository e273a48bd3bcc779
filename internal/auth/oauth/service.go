// Package oauth implements the authorization-code sign-in flow against
// upstream identity providers. Google is the provider the console
// offers on its login page.
package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tracesphere/campusasset/internal/config"
)

const stateTokenBytes = 32

// Provider describes one upstream identity provider.
type Provider struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
	AllowSignUp  bool
}

func (p Provider) enabled() bool {
	return strings.TrimSpace(p.ClientID) != "" && strings.TrimSpace(p.AuthURL) != ""
}

// FromConfig builds the provider set the deployment has credentials
// for. A provider without a client id stays registered but disabled.
func FromConfig(cfg config.Config) []Provider {
	return []Provider{
		{
			Name:         "google",
			ClientID:     cfg.OAuthGoogleClientID,
			ClientSecret: cfg.OAuthGoogleClientSecret,
			AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			UserInfoURL:  "https://openidconnect.googleapis.com/v1/userinfo",
			Scopes:       []string{"openid", "email", "profile"},
			AllowSignUp:  cfg.OAuthAllowSignUp,
		},
	}
}

type Service interface {
	// Begin prepares the provider redirect: the authorization URL plus
	// the state and PKCE verifier the callback must present.
	Begin(ctx context.Context, provider string, redirectURI string) (*BeginResult, error)
	// Exchange trades the callback code for the provider identity.
	Exchange(ctx context.Context, provider string, req ExchangeRequest) (*ExchangeResult, error)
}

type BeginResult struct {
	URL          string
	State        string
	CodeVerifier string
}

type ExchangeRequest struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
}

type ExchangeResult struct {
	Provider    string
	AllowSignUp bool
	Identity    Identity
}

// Identity is the profile the provider vouches for.
type Identity struct {
	ExternalID  string
	Email       string
	DisplayName string
}

type service struct {
	providers  map[string]Provider
	httpClient *http.Client
}

func NewService(providers []Provider) Service {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			continue
		}
		byName[name] = p
	}
	return &service{
		providers:  byName,
		httpClient: http.DefaultClient,
	}
}

// NewFromConfig wires the service from application config.
func NewFromConfig(cfg config.Config) Service {
	return NewService(FromConfig(cfg))
}

func (s *service) Begin(ctx context.Context, provider string, redirectURI string) (*BeginResult, error) {
	_ = ctx

	p, err := s.lookup(provider)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(redirectURI) == "" {
		return nil, ErrInvalidRequest
	}

	state, err := randomToken()
	if err != nil {
		return nil, err
	}
	verifier, err := randomToken()
	if err != nil {
		return nil, err
	}

	authURL, err := authorizationURL(p, redirectURI, state, codeChallenge(verifier))
	if err != nil {
		return nil, err
	}

	return &BeginResult{
		URL:          authURL,
		State:        state,
		CodeVerifier: verifier,
	}, nil
}

func (s *service) Exchange(ctx context.Context, provider string, req ExchangeRequest) (*ExchangeResult, error) {
	p, err := s.lookup(provider)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, ErrInvalidRequest
	}
	if strings.TrimSpace(p.TokenURL) == "" || strings.TrimSpace(p.UserInfoURL) == "" {
		return nil, ErrProviderDisabled
	}

	accessToken, err := s.redeemCode(ctx, p, req)
	if err != nil {
		return nil, err
	}
	identity, err := s.fetchIdentity(ctx, p, accessToken)
	if err != nil {
		return nil, err
	}

	return &ExchangeResult{
		Provider:    p.Name,
		AllowSignUp: p.AllowSignUp,
		Identity:    identity,
	}, nil
}

func (s *service) lookup(rawName string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(rawName))
	if name == "" {
		return Provider{}, ErrProviderNotFound
	}
	p, ok := s.providers[name]
	if !ok {
		return Provider{}, ErrProviderNotFound
	}
	if !p.enabled() {
		return Provider{}, ErrProviderDisabled
	}
	return p, nil
}

func authorizationURL(p Provider, redirectURI, state, challenge string) (string, error) {
	parsed, err := url.Parse(p.AuthURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("response_type", "code")
	query.Set("client_id", p.ClientID)
	query.Set("redirect_uri", redirectURI)
	if len(p.Scopes) > 0 {
		query.Set("scope", strings.Join(p.Scopes, " "))
	}
	query.Set("state", state)
	query.Set("code_challenge", challenge)
	query.Set("code_challenge_method", "S256")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (s *service) redeemCode(ctx context.Context, p Provider, req ExchangeRequest) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", req.Code)
	form.Set("redirect_uri", req.RedirectURI)
	form.Set("client_id", p.ClientID)
	if strings.TrimSpace(p.ClientSecret) != "" {
		form.Set("client_secret", p.ClientSecret)
	}
	if strings.TrimSpace(req.CodeVerifier) != "" {
		form.Set("code_verifier", req.CodeVerifier)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", ErrUnauthorized
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err == nil && token.AccessToken != "" {
		return token.AccessToken, nil
	}

	// Some providers still answer form-encoded.
	values, err := url.ParseQuery(string(body))
	if err != nil || values.Get("access_token") == "" {
		return "", ErrUnauthorized
	}
	return values.Get("access_token"), nil
}

func (s *service) fetchIdentity(ctx context.Context, p Provider, accessToken string) (Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return Identity{}, ErrUnauthorized
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Identity{}, ErrUnauthorized
	}

	var claims map[string]any
	if err := json.Unmarshal(body, &claims); err != nil {
		return Identity{}, ErrUnauthorized
	}

	identity := Identity{
		ExternalID:  firstClaim(claims, "sub", "id", "user_id"),
		Email:       firstClaim(claims, "email"),
		DisplayName: firstClaim(claims, "name", "given_name", "preferred_username"),
	}
	if identity.DisplayName == "" {
		identity.DisplayName = identity.Email
	}
	if identity.ExternalID == "" || identity.Email == "" {
		return Identity{}, ErrUnauthorized
	}
	return identity, nil
}

func firstClaim(claims map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := claims[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case json.Number:
			return v.String()
		default:
			if str := strings.TrimSpace(fmt.Sprint(v)); str != "" {
				return str
			}
		}
	}
	return ""
}

func randomToken() (string, error) {
	buf := make([]byte, stateTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func codeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
