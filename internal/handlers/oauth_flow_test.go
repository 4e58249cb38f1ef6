package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

func testProviders() map[string]OAuthProvider {
	return map[string]OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: "https://accounts.example.com/token"},
				Scopes:       []string{"email"},
			},
		},
		"facebook": {
			Name:   "facebook",
			Label:  "Facebook",
			Config: &oauth2.Config{},
		},
	}
}

func TestProvidersListsConfiguredOnly(t *testing.T) {
	h := NewAuthHandler(nil, nil, testProviders(), "", "http://app.example.com")

	views := h.oauthProviderViews()
	if len(views) != 1 || views[0].Name != "google" || views[0].URL != "/auth/google/start" {
		t.Errorf("oauthProviderViews() = %+v", views)
	}
}

func TestStartOAuthRedirects(t *testing.T) {
	h := NewAuthHandler(nil, nil, testProviders(), "https://cards.example.com/", "http://app.example.com")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/start", nil)
	req.SetPathValue("provider", "google")
	rec := httptest.NewRecorder()
	h.StartOAuth(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("StartOAuth status = %d, want 302", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Host != "accounts.example.com" {
		t.Errorf("redirect host = %q", loc.Host)
	}
	if got := loc.Query().Get("redirect_uri"); got != "https://cards.example.com/auth/google/callback" {
		t.Errorf("redirect_uri = %q", got)
	}

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	if state == "" || loc.Query().Get("state") != state {
		t.Errorf("state cookie %q does not match state param %q", state, loc.Query().Get("state"))
	}
}

func TestOAuthErrorsRedirectToLogin(t *testing.T) {
	h := NewAuthHandler(nil, nil, testProviders(), "", "http://app.example.com")

	tests := []struct {
		name     string
		provider string
		query    string
		cookie   string
		wantMsg  string
	}{
		{"unknown provider", "myspace", "code=abc&state=s1", "s1", "OAuth provider not configured"},
		{"unconfigured provider", "facebook", "code=abc&state=s1", "s1", "OAuth provider not configured"},
		{"missing code", "google", "state=s1", "s1", "Missing authorization code"},
		{"state mismatch", "google", "code=abc&state=s2", "s1", "Invalid OAuth state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/"+tt.provider+"/callback?"+tt.query, nil)
			req.SetPathValue("provider", tt.provider)
			req.AddCookie(&http.Cookie{Name: "oauth_state", Value: tt.cookie})
			rec := httptest.NewRecorder()

			h.OAuthCallback(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			loc, _ := url.Parse(rec.Header().Get("Location"))
			if loc.Path != "/login" || loc.Query().Get("error") != tt.wantMsg {
				t.Errorf("Location = %q", rec.Header().Get("Location"))
			}
		})
	}
}

func signAppleToken(t *testing.T, key *rsa.PrivateKey, claims appleTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseAppleIDToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	keys := func(ctx context.Context, kid string) (*rsa.PublicKey, error) {
		if kid != "test-key" {
			return nil, errors.New("unknown key")
		}
		return &key.PublicKey, nil
	}

	valid := func() appleTokenClaims {
		return appleTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "https://appleid.apple.com",
				Subject:   "apple-user-1",
				Audience:  jwt.ClaimStrings{"com.example.cards"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email: "learner@example.com",
			Nonce: "n-1",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *appleTokenClaims)
		wantErr string
	}{
		{"valid", func(c *appleTokenClaims) {}, ""},
		{"wrong issuer", func(c *appleTokenClaims) { c.Issuer = "https://evil.example.com" }, "issuer"},
		{"wrong audience", func(c *appleTokenClaims) { c.Audience = jwt.ClaimStrings{"other"} }, "audience"},
		{"wrong nonce", func(c *appleTokenClaims) { c.Nonce = "n-2" }, "nonce"},
		{"no email", func(c *appleTokenClaims) { c.Email = "" }, "email"},
		{"expired", func(c *appleTokenClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) }, "invalid Apple token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := valid()
			tt.mutate(&claims)

			got, err := parseAppleIDToken(context.Background(), signAppleToken(t, key, claims), "com.example.cards", "n-1", keys)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("parseAppleIDToken() error = %v", err)
				}
				if got.Subject != "apple-user-1" || got.Email != "learner@example.com" {
					t.Errorf("claims = %+v", got)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("parseAppleIDToken() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
