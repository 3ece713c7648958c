package httputil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func fastConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetryClientStatusHandling(t *testing.T) {
	tests := []struct {
		name         string
		failStatus   int
		failures     int32
		wantStatus   int
		wantAttempts int32
	}{
		{name: "retriesOn503", failStatus: http.StatusServiceUnavailable, failures: 2, wantStatus: http.StatusOK, wantAttempts: 3},
		{name: "retriesOn429", failStatus: http.StatusTooManyRequests, failures: 1, wantStatus: http.StatusOK, wantAttempts: 2},
		{name: "retriesOn500", failStatus: http.StatusInternalServerError, failures: 1, wantStatus: http.StatusOK, wantAttempts: 2},
		{name: "retriesOn502", failStatus: http.StatusBadGateway, failures: 1, wantStatus: http.StatusOK, wantAttempts: 2},
		{name: "noRetryOn400", failStatus: http.StatusBadRequest, failures: 10, wantStatus: http.StatusBadRequest, wantAttempts: 1},
		{name: "noRetryOn401", failStatus: http.StatusUnauthorized, failures: 10, wantStatus: http.StatusUnauthorized, wantAttempts: 1},
		{name: "noRetryOn404", failStatus: http.StatusNotFound, failures: 10, wantStatus: http.StatusNotFound, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				count := atomic.AddInt32(&attempts, 1)
				if count <= tt.failures {
					w.WriteHeader(tt.failStatus)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := NewRetryClient(server.Client(), fastConfig(3))

			req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if got := atomic.LoadInt32(&attempts); got != tt.wantAttempts {
				t.Errorf("expected %d attempts, got %d", tt.wantAttempts, got)
			}
		})
	}
}

func TestRetryClientRespectsMaxRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	maxRetries := 2
	client := NewRetryClient(server.Client(), fastConfig(maxRetries))

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected last status 503, got %d", resp.StatusCode)
	}
	expectedAttempts := int32(1 + maxRetries)
	if atomic.LoadInt32(&attempts) != expectedAttempts {
		t.Errorf("expected %d attempts, got %d", expectedAttempts, attempts)
	}
}

func TestRetryClientUsesExponentialBackoff(t *testing.T) {
	var mu sync.Mutex
	var timestamps []time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		timestamps = append(timestamps, time.Now())
		count := len(timestamps)
		mu.Unlock()
		if count < 4 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRetryClient(server.Client(), RetryConfig{
		MaxRetries:   3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
	})

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(timestamps) < 4 {
		t.Fatalf("expected at least 4 timestamps, got %d", len(timestamps))
	}

	expectedDelays := []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
	}

	for i, expected := range expectedDelays {
		delay := timestamps[i+1].Sub(timestamps[i])
		minDelay := time.Duration(float64(expected) * 0.5)
		maxDelay := time.Duration(float64(expected) * 1.5)
		if delay < minDelay || delay > maxDelay {
			t.Errorf("delay %d: expected ~%v (between %v and %v), got %v",
				i+1, expected, minDelay, maxDelay, delay)
		}
	}
}

func TestRetryClientWithRequestBody(t *testing.T) {
	var attempts int32
	var mu sync.Mutex
	var receivedBodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		receivedBodies = append(receivedBodies, string(body))
		mu.Unlock()
		if atomic.AddInt32(&attempts, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRetryClient(server.Client(), fastConfig(3))

	bodyContent := "test body content"
	req, _ := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(bodyContent))

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(receivedBodies) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(receivedBodies))
	}
	for i, body := range receivedBodies {
		if body != bodyContent {
			t.Errorf("attempt %d: expected body %q, got %q", i+1, bodyContent, body)
		}
	}
}

func TestRetryClientStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRetryClient(server.Client(), RetryConfig{
		MaxRetries:   5,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   1.0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	start := time.Now()
	_, err := client.Do(req)
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("retry did not stop promptly on cancellation: %v", time.Since(start))
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("expected MaxRetries 3, got %d", config.MaxRetries)
	}
	if config.InitialDelay != 500*time.Millisecond {
		t.Errorf("expected InitialDelay 500ms, got %v", config.InitialDelay)
	}
	if config.MaxDelay != 5*time.Second {
		t.Errorf("expected MaxDelay 5s, got %v", config.MaxDelay)
	}
	if config.Multiplier != 2.0 {
		t.Errorf("expected Multiplier 2.0, got %f", config.Multiplier)
	}
}

func TestNewRetryTransportAppliesDefaults(t *testing.T) {
	transport := NewRetryTransport(nil, RetryConfig{})

	if transport.base != http.DefaultTransport {
		t.Error("expected http.DefaultTransport when nil is passed")
	}
	if transport.config != DefaultRetryConfig() {
		t.Errorf("expected default config, got %+v", transport.config)
	}
}

func TestNewRetryClientKeepsTimeout(t *testing.T) {
	client := NewRetryClient(&http.Client{Timeout: 7 * time.Second}, RetryConfig{})
	if client.Timeout != 7*time.Second {
		t.Errorf("expected timeout 7s, got %v", client.Timeout)
	}
	if _, ok := client.Transport.(*RetryTransport); !ok {
		t.Errorf("expected *RetryTransport, got %T", client.Transport)
	}
}
