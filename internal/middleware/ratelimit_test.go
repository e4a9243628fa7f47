package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "X-Forwarded-For single",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "X-Forwarded-For multiple",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "X-Real-IP",
			headers:  map[string]string{"X-Real-IP": "10.0.0.2"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.2",
		},
		{
			name:     "XFF wins over X-Real-IP",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "10.0.0.2"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "remote addr fallback",
			headers:  map[string]string{},
			remote:   "192.168.1.1:1234",
			expected: "192.168.1.1",
		},
		{
			name:     "remote addr without port",
			headers:  map[string]string{},
			remote:   "192.168.1.1",
			expected: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tt.remote

			if ip := getClientIP(req); ip != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, ip)
			}
		})
	}
}

func TestNewAuthRateLimiter(t *testing.T) {
	rl := NewAuthRateLimiter(nil)
	if rl.limit != 5 {
		t.Errorf("expected limit 5, got %d", rl.limit)
	}
	if rl.window != time.Minute {
		t.Errorf("expected window 1m, got %s", rl.window)
	}
	if rl.prefix != "ratelimit:auth" {
		t.Errorf("expected prefix ratelimit:auth, got %q", rl.prefix)
	}
}

func TestNewAPIRateLimiter(t *testing.T) {
	rl := NewAPIRateLimiter(nil)
	if rl.limit != 100 {
		t.Errorf("expected limit 100, got %d", rl.limit)
	}
	if rl.prefix != "ratelimit:api" {
		t.Errorf("expected prefix ratelimit:api, got %q", rl.prefix)
	}
}
