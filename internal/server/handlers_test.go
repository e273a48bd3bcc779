package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	assetdomain "github.com/tracesphere/campusasset/internal/asset/domain"
	authdomain "github.com/tracesphere/campusasset/internal/auth/domain"
	"github.com/tracesphere/campusasset/internal/auth/oauth"
	"github.com/tracesphere/campusasset/internal/auth/session"
	"github.com/tracesphere/campusasset/internal/config"
	"github.com/tracesphere/campusasset/internal/liststore"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	loginCalls int
	loginErr   error
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	return &authdomain.User{ID: snowflake.ID(200), Email: req.Email, Role: req.Role}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	f.loginCalls++
	_ = ctx
	_ = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		User: &authdomain.User{ID: snowflake.ID(200), Email: req.Email},
		Session: &authdomain.SessionView{
			Metadata: map[string]any{"user_id": "200"},
		},
		RawToken:  "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.User, *authdomain.Session, error) {
	_ = ctx
	_ = rawToken
	return nil, nil, authdomain.ErrInvalidSession
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID string, newPassword string) error {
	_ = ctx
	_ = userID
	_ = newPassword
	return nil
}

func (f *fakeAuthService) CreatePasswordReset(ctx context.Context, email string) (string, error) {
	_ = ctx
	_ = email
	return "", authdomain.ErrUserNotFound
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	_ = ctx
	_ = rawToken
	_ = newPassword
	return nil
}

type fakeAssetService struct {
	deleteCalls   int
	lastConfirmed bool
}

func (f *fakeAssetService) Start(ctx context.Context) error { return nil }
func (f *fakeAssetService) Stop()                           {}

func (f *fakeAssetService) List(ctx context.Context, q assetdomain.Query) assetdomain.ListResult {
	return assetdomain.ListResult{Records: []assetdomain.Asset{}, Mode: "demo"}
}

func (f *fakeAssetService) Create(ctx context.Context, req assetdomain.SaveRequest) (*assetdomain.Asset, error) {
	return &assetdomain.Asset{AssetID: req.AssetID, Name: req.Name}, nil
}

func (f *fakeAssetService) Update(ctx context.Context, assetID string, req assetdomain.SaveRequest) error {
	return assetdomain.ErrNotFound
}

func (f *fakeAssetService) Delete(ctx context.Context, assetID string, confirmed bool) error {
	f.deleteCalls++
	f.lastConfirmed = confirmed
	if !confirmed {
		return liststore.ErrDeleteNotConfirmed
	}
	return nil
}

func (f *fakeAssetService) Lookup(ctx context.Context, assetID string) (*assetdomain.Asset, error) {
	return nil, assetdomain.ErrNotFound
}

func (f *fakeAssetService) ExportCSV(ctx context.Context, q assetdomain.Query) string {
	return strings.Join(assetdomain.CSVHeaders(), ",")
}

func (f *fakeAssetService) Watch() (<-chan []assetdomain.Asset, func()) {
	return nil, func() {}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := &fakeAuthService{}
	srv := &Server{
		cfg:      config.Config{},
		authsvc:  authSvc,
		sessions: session.NewManager(config.Config{}),
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/login", srv.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@campus.edu","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if authSvc.loginCalls != 1 {
		t.Fatalf("expected 1 login call, got %d", authSvc.loginCalls)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "session-token" {
		t.Fatalf("unexpected cookie value %q", sessionCookie.Value)
	}
}

func TestLoginInvalidCredentialsReturns401(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		cfg:      config.Config{},
		authsvc:  &fakeAuthService{loginErr: authdomain.ErrInvalidCredentials},
		sessions: session.NewManager(config.Config{}),
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/login", srv.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@campus.edu","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestDeleteAssetRequiresConfirmation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	assetSvc := &fakeAssetService{}
	srv := &Server{
		cfg:      config.Config{},
		assetSvc: assetSvc,
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.DELETE("/admin/assets/:id", srv.DeleteAsset)

	req := httptest.NewRequest(http.MethodDelete, "/admin/assets/CIT-0001", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Code != "delete_not_confirmed" {
		t.Fatalf("unexpected error payload: %+v", body.Error)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin/assets/CIT-0001?confirm=true", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	if assetSvc.deleteCalls != 2 || !assetSvc.lastConfirmed {
		t.Fatalf("unexpected delete calls: %d confirmed=%v", assetSvc.deleteCalls, assetSvc.lastConfirmed)
	}
}

func TestOAuthLoginRedirectsToProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		cfg:      config.Config{},
		log:      zap.NewNop(),
		sessions: session.NewManager(config.Config{}),
		oauthsvc: oauth.NewService([]oauth.Provider{{
			Name:        "google",
			ClientID:    "client-123",
			AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:    "https://oauth2.googleapis.com/token",
			UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
			Scopes:      []string{"openid", "email"},
		}}),
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/auth/oauth/:provider", srv.OAuthLogin)

	req := httptest.NewRequest(http.MethodGet, "/auth/oauth/google", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", resp.Code)
	}
	location := resp.Header().Get("Location")
	if !strings.HasPrefix(location, "https://accounts.google.com/") {
		t.Fatalf("unexpected redirect target %q", location)
	}

	var stateCookie *http.Cookie
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "oauth_state" {
			stateCookie = cookie
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Fatal("expected oauth state cookie to be set")
	}
}

func TestOAuthLoginUnknownProviderReturns404(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		cfg:      config.Config{},
		log:      zap.NewNop(),
		sessions: session.NewManager(config.Config{}),
		oauthsvc: oauth.NewService(nil),
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/auth/oauth/:provider", srv.OAuthLogin)

	req := httptest.NewRequest(http.MethodGet, "/auth/oauth/github", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestUpdateUnknownAssetReturns404(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		cfg:      config.Config{},
		assetSvc: &fakeAssetService{},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.PATCH("/admin/assets/:id", srv.UpdateAsset)

	req := httptest.NewRequest(http.MethodPatch, "/admin/assets/CIT-9999", bytes.NewBufferString(`{"name":"Ghost"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
