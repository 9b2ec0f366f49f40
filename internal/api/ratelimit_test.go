package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.1:51234",
			want:       "192.0.2.1",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:443",
			want:       "2001:db8::1",
		},
		{
			name:       "first forwarded address wins",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			remoteAddr: "10.0.0.1:80",
			want:       "203.0.113.5",
		},
		{
			name:       "real ip header",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			remoteAddr: "10.0.0.1:80",
			want:       "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(2, time.Hour, 2)
	defer limiter.Stop()

	h := RateLimitMiddleware(limiter, slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/flag/bookmark/1", http.NoBody)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, request("192.0.2.1"))
	assert.Equal(t, http.StatusNoContent, request("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("192.0.2.1"))
	assert.Equal(t, http.StatusNoContent, request("192.0.2.2"), "other clients are limited separately")
}
