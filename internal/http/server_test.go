package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mapfin/internal/log"
	"mapfin/internal/sheets"
	"mapfin/internal/sheets/memory"
)

func newTestServer(t *testing.T, store sheets.RowStore, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	srv := NewServer(":0", store, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestRecordLifecycle(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2024-12-01","inr_amount":500,"tags":["food"],"is_reimbursable":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[createResponse](t, rr)
	if !created.Success || !strings.HasPrefix(created.ID, "expenses_") {
		t.Fatalf("unexpected create response: %+v", created)
	}
	if created.Data["inr_amount"] != "500" || created.Data["tags"] != `["food"]` || created.Data["is_reimbursable"] != "false" {
		t.Fatalf("unexpected stored row: %v", created.Data)
	}

	rr = do(t, srv, http.MethodGet, "/api/Expenses", "")
	rows := decode[[]map[string]string](t, rr)
	if rr.Code != http.StatusOK || len(rows) != 1 || rows[0]["id"] != created.ID {
		t.Fatalf("list status=%d rows=%v", rr.Code, rows)
	}

	rr = do(t, srv, http.MethodPut, "/api/expenses/"+created.ID, `{"date":"2024-12-02","inr_amount":"750.5"}`)
	updated := decode[updateResponse](t, rr)
	if rr.Code != http.StatusOK || !updated.Success || updated.Data["inr_amount"] != "750.5" || updated.Data.ID() != created.ID {
		t.Fatalf("update status=%d body=%+v", rr.Code, updated)
	}

	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusOK || !decode[deleteResponse](t, rr).Success {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})

	tests := []struct {
		name, method, path, body string
		status                   int
		msg                      string
	}{
		{"unknown sheet", http.MethodGet, "/api/Nope", "", http.StatusNotFound, "Sheet not found"},
		{"unknown record", http.MethodPut, "/api/goals/goals_missing", `{"name":"x"}`, http.StatusNotFound, "Record not found"},
		{"delete unknown record", http.MethodDelete, "/api/goals/goals_missing", "", http.StatusNotFound, "Record not found"},
		{"missing sheet", http.MethodPost, "/api/", `{}`, http.StatusBadRequest, "Sheet name is required"},
		{"missing id", http.MethodPut, "/api/goals", `{}`, http.StatusBadRequest, "Sheet name and ID are required"},
		{"bad json", http.MethodPost, "/api/goals", `{"name":`, http.StatusBadRequest, "invalid JSON body"},
		{"empty body", http.MethodPost, "/api/goals", "", http.StatusBadRequest, "request body is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			if got := decode[errorResponse](t, rr).Error; !strings.Contains(got, tt.msg) {
				t.Fatalf("error=%q want %q", got, tt.msg)
			}
		})
	}
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})
	for _, path := range []string{"/healthz", "/readyz", "/api/health"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
	body := decode[map[string]string](t, do(t, srv, http.MethodGet, "/api/health", ""))
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Fatalf("timestamp: %v", err)
	}

	down := newTestServer(t, memory.New(nil), Options{Ready: func(context.Context) error { return errors.New("sheets unreachable") }})
	rr := do(t, down, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "sheets unreachable") {
		t.Fatalf("readyz status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{RateLimit: 2, RateWindow: time.Hour})

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/tags", `{"name":"t"}`); rr.Code != http.StatusOK {
			t.Fatalf("post %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/tags", `{"name":"t"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "3600" {
		t.Fatalf("expected 429, got %d (Retry-After %q)", rr.Code, rr.Header().Get("Retry-After"))
	}
	if rr := do(t, srv, http.MethodGet, "/api/tags", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", rr.Code)
	}
	if !strings.Contains(do(t, srv, http.MethodGet, "/metrics", "").Body.String(), "rate_limit_hits_total 1") {
		t.Fatalf("metrics missing rate limit hit")
	}
}

func TestHeadersAndPreflight(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})

	rr := do(t, srv, http.MethodOptions, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("preflight status=%d", rr.Code)
	}
	for header, want := range map[string]string{
		"Access-Control-Allow-Origin": "*",
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
	} {
		if got := rr.Header().Get(header); got != want {
			t.Fatalf("%s=%q want %q", header, got, want)
		}
	}
	if !strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_") {
		t.Fatalf("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "trace-123" {
		t.Fatalf("request id not propagated: %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name, remote, xff, xri, want string
	}{
		{"direct", "203.0.113.7:5000", "", "", "203.0.113.7"},
		{"untrusted forwarder ignored", "203.0.113.7:5000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted forwarder", "10.0.0.2:5000", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"real ip fallback", "127.0.0.1:5000", "garbage", "198.51.100.9", "198.51.100.9"},
		{"no port", "198.51.100.3", "", "", "198.51.100.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterWindowAndCleanup(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	var m securityMetrics
	if !rl.allow("a", &m) || rl.allow("a", &m) {
		t.Fatalf("expected one request per window")
	}
	if !rl.allow("b", &m) {
		t.Fatalf("clients are limited independently")
	}
	now = now.Add(time.Minute)
	if !rl.allow("a", &m) {
		t.Fatalf("new window should reset the counter")
	}
	if m.rateLimitHits != 1 {
		t.Fatalf("rateLimitHits=%d", m.rateLimitHits)
	}

	now = now.Add(11 * time.Minute)
	if removed := rl.cleanupStaleEntries(); removed != 2 || rl.activeClients() != 0 {
		t.Fatalf("removed=%d active=%d", removed, rl.activeClients())
	}
}

func TestRateLimiterSweepsIdleClientsOnAllow(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		rl.allow(ip, nil)
	}
	now = now.Add(5 * time.Minute)
	rl.allow("10.0.0.1", nil)
	if n := rl.activeClients(); n != 3 {
		t.Fatalf("clients idle for less than ten windows are kept, active=%d", n)
	}

	now = now.Add(6 * time.Minute)
	rl.allow("10.0.0.9", nil)
	if n := rl.activeClients(); n != 2 {
		t.Fatalf("expected idle clients swept on allow, active=%d", n)
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	var m securityMetrics
	if detectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/api/expenses", nil), &m) {
		t.Fatalf("plain request flagged")
	}
	if !detectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/api/../.env", nil), &m) {
		t.Fatalf("traversal not flagged")
	}
	if m.suspiciousRequests != 1 {
		t.Fatalf("suspiciousRequests=%d", m.suspiciousRequests)
	}
}
