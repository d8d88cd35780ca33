package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

func TestRateLimitMiddleware_AllowsWithinLimit(t *testing.T) {
	handler := RateLimitMiddleware(5)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/predict", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimitMiddleware_BlocksOverLimit(t *testing.T) {
	handler := RateLimitMiddleware(3)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/predict", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	// 4th request should be rate-limited
	req := httptest.NewRequest("POST", "/predict", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON body, got content type %q", ct)
	}
}

func TestRateLimitMiddleware_KeysByClientIP(t *testing.T) {
	handler := RateLimitMiddleware(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest("POST", "/predict", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	// Different source ports share a bucket
	send("10.0.0.1:1000")
	send("10.0.0.1:2000")

	if code := send("10.0.0.2:1000"); code != http.StatusOK {
		t.Errorf("second client should not be rate-limited, got %d", code)
	}
	if code := send("10.0.0.1:3000"); code != http.StatusTooManyRequests {
		t.Errorf("first client should be rate-limited, got %d", code)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	handler := RateLimitMiddleware(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 500; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/predict", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 with limiting disabled, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimiterWindowExpires(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	now := time.Now()

	if !rl.allow("a", now) {
		t.Fatal("first request should pass")
	}
	if rl.allow("a", now.Add(30*time.Second)) {
		t.Fatal("second request inside the window should be blocked")
	}
	if !rl.allow("a", now.Add(61*time.Second)) {
		t.Fatal("request after the window should pass")
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)
	now := time.Now()

	for i := 0; i < 100; i++ {
		rl.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256), now)
	}
	if got := rl.size(); got != 100 {
		t.Fatalf("expected 100 tracked clients, got %d", got)
	}

	if !rl.allow("10.9.9.9", now.Add(2*time.Minute)) {
		t.Fatal("request from a new client should pass")
	}
	if got := rl.size(); got != 1 {
		t.Errorf("expected idle clients to be dropped, %d still tracked", got)
	}
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	router := NewRouter(loadedHolder(t), scoring.NewScorer(fixedSource(0.5), discardLogger()), nil,
		NewMetrics(prometheus.NewRegistry()), RouterOptions{RequestsPerMinute: 2}, discardLogger())

	var ok, limited int
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("POST", "/predict", bytes.NewBufferString(validBody))
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		switch w.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			limited++
		default:
			t.Fatalf("request %d: unexpected status %d", i+1, w.Code)
		}
	}

	if ok != 2 || limited != 48 {
		t.Errorf("expected 2 allowed and 48 limited, got ok=%d limited=%d", ok, limited)
	}
}

func TestRateLimitTrustsForwardedForWhenEnabled(t *testing.T) {
	router := NewRouter(loadedHolder(t), scoring.NewScorer(fixedSource(0.5), discardLogger()), nil,
		NewMetrics(prometheus.NewRegistry()), RouterOptions{RequestsPerMinute: 1, TrustProxyHeaders: true}, discardLogger())

	send := func(forwarded string) int {
		req := httptest.NewRequest("POST", "/predict", bytes.NewBufferString(validBody))
		req.RemoteAddr = "10.0.0.1:40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("198.51.100.1"); code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", code)
	}
	if code := send("198.51.100.2"); code != http.StatusOK {
		t.Errorf("second client behind the proxy: expected 200, got %d", code)
	}
	if code := send("198.51.100.1"); code != http.StatusTooManyRequests {
		t.Errorf("first client again: expected 429, got %d", code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	called := false
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("inner handler was not called")
	}
	if w.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", w.Code)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON log line: %v", err)
	}
	if entry["path"] != "/test" {
		t.Errorf("expected path /test, got %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusAccepted) {
		t.Errorf("expected status 202, got %v", entry["status"])
	}
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/predict", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] != "Internal server error: boom" {
		t.Errorf("unexpected detail %q", body["detail"])
	}
}
