package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func TestAllowAddrBurstPerHost(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(1<<62), 2)
	defer l.Close()

	// ports differ, host is shared
	if !l.AllowAddr("10.0.0.1:1000") || !l.AllowAddr("10.0.0.1:1001") {
		t.Fatal("first two connections from one host should be allowed")
	}
	if l.AllowAddr("10.0.0.1:1002") {
		t.Error("third connection from the same host should be throttled")
	}
	if !l.AllowAddr("10.0.0.2:1000") {
		t.Error("another host must have its own bucket")
	}
}

func TestGetLimiterReturnsSameBucket(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	defer l.Close()

	if l.GetLimiter("10.0.0.1") != l.GetLimiter("10.0.0.1") {
		t.Error("GetLimiter returned different buckets for one IP")
	}

	l.Close() // idempotent
}

func TestHostOf(t *testing.T) {
	tests := map[string]string{
		"10.0.0.1:80": "10.0.0.1",
		"[::1]:8000":  "::1",
		"10.0.0.1":    "10.0.0.1",
		"":            "unknown_ip",
	}

	for in, want := range tests {
		if got := HostOf(in); got != want {
			t.Errorf("HostOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(1<<62), 1)
	defer l.Close()

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do(); code != http.StatusNoContent {
		t.Errorf("first request status = %d, want %d", code, http.StatusNoContent)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", code, http.StatusTooManyRequests)
	}
}
