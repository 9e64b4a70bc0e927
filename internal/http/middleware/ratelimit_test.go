package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeLimiter struct {
	allowed bool
	err     error
	lastID  string
}

func (f *fakeLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	f.lastID = clientID
	return f.allowed, f.err
}

func wrap(l *fakeLimiter) (http.Handler, *int) {
	reached := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	})
	return RateLimit(l, nil, nil)(next), &reached
}

func TestRateLimit_Allowed(t *testing.T) {
	h, reached := wrap(&fakeLimiter{allowed: true})

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if *reached != 1 {
		t.Error("expected request to reach the handler")
	}
}

func TestRateLimit_Denied(t *testing.T) {
	h, reached := wrap(&fakeLimiter{allowed: false})

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json response, got %q", ct)
	}
	if *reached != 0 {
		t.Error("denied request must not reach the handler")
	}
}

func TestRateLimit_FailsOpenOnLimiterError(t *testing.T) {
	h, reached := wrap(&fakeLimiter{allowed: false, err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected fail-open admission, got %d", w.Code)
	}
	if *reached != 1 {
		t.Error("expected request to reach the handler despite limiter error")
	}
}

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"peer address with port", "192.0.2.1:5050", "", "192.0.2.1"},
		{"forwarded-for preferred", "192.0.2.1:5050", "203.0.113.9", "203.0.113.9"},
		{"first forwarded hop", "192.0.2.1:5050", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"bare peer address", "192.0.2.1", "", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/submit", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIdentifier(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
