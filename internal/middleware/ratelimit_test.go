package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/questionforum/questionforum/internal/app/domain/identity"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3, nil)
	handler := rl.Handler(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", resp.Code)
	}
}

func TestRateLimiterKeysByUser(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	handler := rl.Handler(okHandler())

	send := func(user identity.User) int {
		req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if !user.Zero() {
			req = req.WithContext(WithUser(req.Context(), user))
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := send(identity.User{ID: "u1"}); code != http.StatusOK {
		t.Fatalf("u1 first request: %d", code)
	}
	if code := send(identity.User{ID: "u1"}); code != http.StatusTooManyRequests {
		t.Fatalf("u1 second request: expected 429, got %d", code)
	}
	// A different user has their own bucket.
	if code := send(identity.User{ID: "u2"}); code != http.StatusOK {
		t.Fatalf("u2 first request: %d", code)
	}
}
