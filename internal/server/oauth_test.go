package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func oauthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/callback",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Invalid State", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig("http://example.com/token"), "expected-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		result := <-h.Result()
		if result.Error() == nil {
			t.Error("expected an error result for state mismatch")
		}
	})

	t.Run("Missing Code", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig("http://example.com/token"), "s")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied&error_description=denied", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("Successful Exchange", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "granted", "token_type": "Bearer", "refresh_token": "r1"}`)
		}))
		defer tokenServer.Close()

		h := NewOAuthHandler(oauthConfig(tokenServer.URL), "s")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=s&code=auth-code", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "granted" || result.Token.RefreshToken != "r1" {
			t.Errorf("unexpected token %+v", result.Token)
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig("http://example.com/token"), "s")

		first := httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil)
		h.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/callback?state=s&code=abc", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for repeated callback", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("outer"), mw("inner"))
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
			t.Errorf("middleware order = %v", order)
		}
	})
}
