package controller_test

import (
	"net/http"
	"net/http/httptest"
	"referralflow/pkg/controller"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerClient(t *testing.T) {
	rl := controller.NewRateLimiter(0.001, 2)

	require.True(t, rl.Allow("1.1.1.1"))
	require.True(t, rl.Allow("1.1.1.1"))
	require.False(t, rl.Allow("1.1.1.1"))

	// other clients have their own budget
	require.True(t, rl.Allow("2.2.2.2"))
}

func TestWithRateLimit(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	h := controller.WithRateLimit(controller.NewRateLimiter(0.001, 1), next)

	send := func() *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec.Result()
	}

	require.Equal(t, http.StatusOK, send().StatusCode)
	res := send()
	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.Equal(t, 1, calls)
}

func TestWithRateLimit_Disabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := controller.WithRateLimit(nil, next)

	for range 10 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_ClientKey(t *testing.T) {
	rl := controller.NewRateLimiter(1, 1)
	require.NoError(t, rl.TrustProxies([]string{"10.0.0.0/8", " 192.168.1.1 "}))

	req := func(remote string, headers ...string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = remote
		for i := 0; i+1 < len(headers); i += 2 {
			r.Header.Add(headers[i], headers[i+1])
		}

		return r
	}

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"untrusted peer ignores headers", req("203.0.113.7:5000", "X-Forwarded-For", "1.2.3.4"), "203.0.113.7"},
		{"untrusted peer ignores real ip", req("203.0.113.7:5000", "X-Real-IP", "1.2.3.4"), "203.0.113.7"},
		{"trusted peer uses forwarded client", req("10.1.2.3:80", "X-Forwarded-For", "198.51.100.9"), "198.51.100.9"},
		{
			"spoofed left entries are skipped",
			req("10.1.2.3:80", "X-Forwarded-For", "6.6.6.6, 198.51.100.9, 10.0.0.2"),
			"198.51.100.9",
		},
		{"repeated headers", req("192.168.1.1:80", "X-Forwarded-For", "7.7.7.7", "X-Forwarded-For", "198.51.100.9"), "198.51.100.9"},
		{"trusted peer with real ip", req("192.168.1.1:80", "X-Real-IP", "198.51.100.10"), "198.51.100.10"},
		{"trusted peer without headers", req("10.9.9.9:80"), "10.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rl.ClientKey(tt.req))
		})
	}

	require.Error(t, rl.TrustProxies([]string{"not-an-ip"}))
	require.Error(t, rl.TrustProxies([]string{"10.0.0.0/99"}))
}

func TestWithRateLimit_RotatingForwardedForDoesNotEvade(t *testing.T) {
	h := controller.WithRateLimit(controller.NewRateLimiter(0.001, 1),
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for _, spoof := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
		req.Header.Set("X-Forwarded-For", spoof)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
