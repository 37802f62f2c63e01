package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestIsOriginAllowed(t *testing.T) {
	allowed := originSet([]string{"https://celebs.example.com/", " https://other.example.com "})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"https://localhost:8443", true},
		{"http://localhost.evil.com", false},
		{"https://celebs.example.com", true},
		{"https://other.example.com", true},
		{"https://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := isOriginAllowed(tt.origin, allowed); got != tt.want {
				t.Errorf("isOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := CORS([]string{"https://celebs.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://celebs.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://celebs.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORS_RejectedOrigin(t *testing.T) {
	handler := CORS(nil)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/identify", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("preflight should not reach the next handler")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "img-src 'self' data:") {
		t.Errorf("CSP must allow data: images, got %q", csp)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
}

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRecentLookups_AddAndRead(t *testing.T) {
	rl := NewRecentLookups("test-secret")

	rec := httptest.NewRecorder()
	names := rl.Add(rec, httptest.NewRequest(http.MethodPost, "/", nil), "Brad Pitt")
	if len(names) != 1 || names[0] != "Brad Pitt" {
		t.Fatalf("Add() = %v", names)
	}

	got := rl.Names(requestWithCookies(rec))
	if len(got) != 1 || got[0] != "Brad Pitt" {
		t.Errorf("Names() = %v, want [Brad Pitt]", got)
	}
}

func TestRecentLookups_OrderDedupAndCap(t *testing.T) {
	rl := NewRecentLookups("test-secret")
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	for _, name := range []string{"A", "B", "C", "D", "E", "F", "b"} {
		rec := httptest.NewRecorder()
		rl.Add(rec, req, name)
		req = requestWithCookies(rec)
	}

	got := rl.Names(req)
	want := []string{"b", "F", "E", "D", "C"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecentLookups_EmptyNameIgnored(t *testing.T) {
	rl := NewRecentLookups("test-secret")
	rec := httptest.NewRecorder()

	if names := rl.Add(rec, httptest.NewRequest(http.MethodPost, "/", nil), "  "); len(names) != 0 {
		t.Errorf("Add(blank) = %v", names)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("blank name should not set a cookie")
	}
}

func TestRecentLookups_TamperedCookie(t *testing.T) {
	rl := NewRecentLookups("test-secret")
	rec := httptest.NewRecorder()
	rl.Add(rec, httptest.NewRequest(http.MethodPost, "/", nil), "Brad Pitt")
	cookie := rec.Result().Cookies()[0]

	tests := []struct {
		name  string
		value string
	}{
		{"no signature", strings.Split(cookie.Value, ".")[0]},
		{"bad signature", strings.Split(cookie.Value, ".")[0] + ".AAAA"},
		{"modified payload", "WyJFdmlsIl0." + strings.Split(cookie.Value, ".")[1]},
		{"garbage", "%%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: cookie.Name, Value: tt.value})
			if got := rl.Names(req); got != nil {
				t.Errorf("Names() = %v, want nil", got)
			}
		})
	}
}

func TestRecentLookups_OtherSecretRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRecentLookups("secret-one").Add(rec, httptest.NewRequest(http.MethodPost, "/", nil), "Brad Pitt")

	if got := NewRecentLookups("secret-two").Names(requestWithCookies(rec)); got != nil {
		t.Errorf("cookie signed with another key accepted: %v", got)
	}
}

func TestRecentLookups_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRecentLookups("").Clear(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expired cookie, got %+v", cookies)
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware(okHandler)

	statuses := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", statuses[2])
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter_LimitCustomReject(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	rejected := 0
	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		rejected++
		w.WriteHeader(http.StatusTeapot)
	})(okHandler)

	codes := make([]int, 0, 2)
	var last *httptest.ResponseRecorder
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTeapot {
		t.Errorf("unexpected statuses %v", codes)
	}
	if rejected != 1 {
		t.Errorf("reject called %d times, want 1", rejected)
	}
	if last.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After before reject, got %q", last.Header().Get("Retry-After"))
	}
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.GetLimiter("10.0.0.1")
	rl.GetLimiter("10.0.0.2")
	if rl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rl.Len())
	}

	now = now.Add(limiterIdleTTL + time.Minute)
	rl.GetLimiter("10.0.0.3")

	if rl.Len() != 1 {
		t.Errorf("Len() after sweep = %d, want 1", rl.Len())
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	if got := clientIP(req); got != "192.168.1.5" {
		t.Errorf("clientIP() = %q", got)
	}
	req.RemoteAddr = "192.168.1.5"
	if got := clientIP(req); got != "192.168.1.5" {
		t.Errorf("clientIP() without port = %q", got)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	handler := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	out := buf.String()
	for _, want := range []string{`"status":418`, `"path":"/brew"`, `"request_id":"`, `"level":"warning"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
