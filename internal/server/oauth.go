package server

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/tracesphere/campusasset/internal/audit/domain"
	authdomain "github.com/tracesphere/campusasset/internal/auth/domain"
	"github.com/tracesphere/campusasset/internal/auth/oauth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthVerifierCookie = "oauth_verifier"
	oauthReturnCookie   = "oauth_return_to"
	oauthStateTTL       = 10 * time.Minute
	oauthFailureTarget  = "/login?error=oauth_login"
)

// OAuthLogin serves both legs of the provider sign-in flow on one
// route: without a code it starts the redirect, with a code it is the
// provider callback.
func (s *Server) OAuthLogin(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	if provider == "" {
		AbortWithError(c, ErrNotFound)
		return
	}

	if strings.TrimSpace(c.Query("error")) != "" {
		s.log.Warn("provider returned an oauth error",
			zap.String("provider", provider),
			zap.String("error", c.Query("error")),
		)
		s.clearOAuthCookies(c)
		c.Redirect(http.StatusFound, oauthFailureTarget)
		return
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		s.beginOAuth(c, provider)
		return
	}
	s.finishOAuth(c, provider, code)
}

func (s *Server) beginOAuth(c *gin.Context, provider string) {
	result, err := s.oauthsvc.Begin(c.Request.Context(), provider, s.oauthCallbackURL(c, provider))
	if err != nil {
		s.failOAuth(c, provider, err)
		return
	}

	s.setOAuthCookie(c, oauthStateCookie, result.State)
	s.setOAuthCookie(c, oauthVerifierCookie, result.CodeVerifier)
	if target := sanitizeReturnPath(c.Query("redirect_to")); target != "" {
		s.setOAuthCookie(c, oauthReturnCookie, target)
	}

	c.Redirect(http.StatusFound, result.URL)
}

func (s *Server) finishOAuth(c *gin.Context, provider string, code string) {
	state := strings.TrimSpace(c.Query("state"))
	storedState, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || !hmac.Equal([]byte(state), []byte(storedState)) {
		s.clearOAuthCookies(c)
		AbortWithError(c, ErrUnauthorized)
		return
	}

	verifier, _ := c.Cookie(oauthVerifierCookie)
	returnTo, _ := c.Cookie(oauthReturnCookie)
	s.clearOAuthCookies(c)

	result, err := s.oauthsvc.Exchange(c.Request.Context(), provider, oauth.ExchangeRequest{
		Code:         code,
		RedirectURI:  s.oauthCallbackURL(c, provider),
		CodeVerifier: verifier,
	})
	if err != nil {
		s.failOAuth(c, provider, err)
		return
	}

	user, err := s.findOrCreateOAuthUser(c.Request.Context(), result)
	if err != nil {
		s.failOAuth(c, provider, err)
		return
	}

	expiresAt, rawToken, err := s.openOAuthSession(c, user)
	if err != nil {
		s.failOAuth(c, provider, err)
		return
	}
	s.sessions.Set(c, rawToken, expiresAt)

	if s.auditSvc != nil {
		userID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), string(auditdomain.ActorTypeUser), &userID, "user.login", "user", &userID, map[string]any{
			"email":    user.Email,
			"provider": result.Provider,
		})
	}

	target := sanitizeReturnPath(returnTo)
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}

// findOrCreateOAuthUser matches the provider identity to a local
// account by email. Accounts created here are provider-backed: they
// carry no password hash and start as staff.
func (s *Server) findOrCreateOAuthUser(ctx context.Context, result *oauth.ExchangeResult) (*authdomain.User, error) {
	email := strings.ToLower(strings.TrimSpace(result.Identity.Email))
	if email == "" {
		return nil, ErrUnauthorized
	}

	var user authdomain.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !result.AllowSignUp {
			return nil, ErrUnauthorized
		}
		now := time.Now().UTC()
		user = authdomain.User{
			ID:          s.genID.Generate(),
			Email:       email,
			DisplayName: strings.TrimSpace(result.Identity.DisplayName),
			Role:        authdomain.RoleStaff,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(result.Identity.DisplayName); name != "" && name != user.DisplayName {
		user.DisplayName = name
		if err := s.db.WithContext(ctx).Model(&authdomain.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			"display_name": name,
			"updated_at":   time.Now().UTC(),
		}).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (s *Server) openOAuthSession(c *gin.Context, user *authdomain.User) (time.Time, string, error) {
	rawToken, err := newRandomToken()
	if err != nil {
		return time.Time{}, "", err
	}

	now := time.Now().UTC()
	session := &authdomain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashRawToken(rawToken),
		UserAgent:        strings.TrimSpace(c.Request.UserAgent()),
		IPAddress:        strings.TrimSpace(c.ClientIP()),
		ExpiresAt:        now.Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.db.WithContext(c.Request.Context()).Create(session).Error; err != nil {
		return time.Time{}, "", err
	}
	return session.ExpiresAt, rawToken, nil
}

func (s *Server) failOAuth(c *gin.Context, provider string, err error) {
	switch {
	case errors.Is(err, oauth.ErrProviderNotFound), errors.Is(err, oauth.ErrProviderDisabled):
		AbortWithError(c, ErrNotFound)
	default:
		s.log.Warn("oauth login failed", zap.String("provider", provider), zap.Error(err))
		c.Redirect(http.StatusFound, oauthFailureTarget)
	}
}

func (s *Server) oauthCallbackURL(c *gin.Context, provider string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := firstForwardedValue(c.GetHeader("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(proto)
	}
	host := c.Request.Host
	if forwarded := firstForwardedValue(c.GetHeader("X-Forwarded-Host")); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host + "/auth/oauth/" + url.PathEscape(provider)
}

func (s *Server) setOAuthCookie(c *gin.Context, name, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(oauthStateTTL.Seconds()), "/", "", s.cfg.AuthCookieSecure, true)
}

func (s *Server) clearOAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	for _, name := range []string{oauthStateCookie, oauthVerifierCookie, oauthReturnCookie} {
		c.SetCookie(name, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
	}
}

// sanitizeReturnPath only lets same-site absolute paths through.
func sanitizeReturnPath(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") {
		return ""
	}
	return value
}

func firstForwardedValue(value string) string {
	if idx := strings.Index(value, ","); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

func newRandomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashRawToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
