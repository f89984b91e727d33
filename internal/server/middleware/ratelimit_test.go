package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRateLimiter_Allow(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(3, &logger)

	for i := range 3 {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different IP has its own bucket")
	}
	if got := rl.Visitors(); got != 2 {
		t.Errorf("visitors = %d, want 2", got)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(10, &logger)
	rl.idle = time.Millisecond

	rl.Allow("10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	rl.Allow("10.0.0.2")
	rl.idle = 3 * time.Millisecond

	if removed := rl.Cleanup(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got := rl.Visitors(); got != 1 {
		t.Errorf("visitors = %d, want 1", got)
	}
}

func TestRateLimiter_ConcurrentRequests(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(50, &logger)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("10.0.0.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// The bucket refills slowly (50/min), so at most one extra token appears.
	if allowed < 50 || allowed > 51 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(1, &logger)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(""); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := send(""); code != http.StatusTooManyRequests {
		t.Errorf("second request = %d, want 429", code)
	}
	if code := send("203.0.113.9, 10.0.0.1"); code != http.StatusOK {
		t.Errorf("forwarded client = %d, want 200", code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{name: "remote host", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "forwarded first hop", remote: "192.0.2.1:5555", forwarded: " 203.0.113.9 , 10.0.0.1", want: "203.0.113.9"},
		{name: "remote without port", remote: "pipe", want: "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
