package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func textResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNew(t *testing.T) {
	client := New()

	if client.HTTPClient == nil {
		t.Fatal("Expected HTTPClient to be initialized")
	}
	if client.HTTPClient.Timeout != defaultTimeout {
		t.Errorf("Expected timeout %v, got %v", defaultTimeout, client.HTTPClient.Timeout)
	}
	if client.MaxAttempts != defaultMaxAttempts {
		t.Errorf("Expected attempts %d, got %d", defaultMaxAttempts, client.MaxAttempts)
	}
	if client.UserAgent != userAgentValue {
		t.Errorf("Expected user agent %q, got %q", userAgentValue, client.UserAgent)
	}
}

func TestNewWith(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		wantTimeout  time.Duration
		wantAttempts int
		wantUA       string
	}{
		{
			name:         "custom",
			cfg:          Config{Timeout: 10 * time.Second, MaxAttempts: 5, UserAgent: "Custom Agent", ProxyURL: "http://proxy.example.com:8080"},
			wantTimeout:  10 * time.Second,
			wantAttempts: 5,
			wantUA:       "Custom Agent",
		},
		{
			name:         "zero values",
			cfg:          Config{},
			wantTimeout:  defaultTimeout,
			wantAttempts: defaultMaxAttempts,
			wantUA:       userAgentValue,
		},
		{
			name:         "negative values",
			cfg:          Config{Timeout: -time.Second, MaxAttempts: -1},
			wantTimeout:  defaultTimeout,
			wantAttempts: defaultMaxAttempts,
			wantUA:       userAgentValue,
		},
		{
			name:         "invalid proxy is ignored",
			cfg:          Config{ProxyURL: "://invalid"},
			wantTimeout:  defaultTimeout,
			wantAttempts: defaultMaxAttempts,
			wantUA:       userAgentValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWith(tt.cfg)
			if c.HTTPClient.Timeout != tt.wantTimeout {
				t.Errorf("timeout = %v, want %v", c.HTTPClient.Timeout, tt.wantTimeout)
			}
			if c.MaxAttempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", c.MaxAttempts, tt.wantAttempts)
			}
			if c.UserAgent != tt.wantUA {
				t.Errorf("user agent = %q, want %q", c.UserAgent, tt.wantUA)
			}
		})
	}
}

func TestGetTextSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != userAgentValue {
			t.Errorf("User-Agent = %q, want %q", got, userAgentValue)
		}
		if got := r.Header.Get("x-youtube-client-name"); got != "1" {
			t.Errorf("x-youtube-client-name = %q, want 1", got)
		}
		_, _ = w.Write([]byte("test response"))
	}))
	defer server.Close()

	h := http.Header{}
	h.Set("x-youtube-client-name", "1")
	body, err := New().GetText(context.Background(), server.URL, h)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if body != "test response" {
		t.Fatalf("body = %q", body)
	}
}

func TestGetTextDoesNotInspectStatus(t *testing.T) {
	calls := 0
	c := &Client{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return textResponse(http.StatusInternalServerError, `{"error":"boom"}`, nil), nil
		})},
		MaxAttempts: 3,
	}

	body, err := c.GetText(context.Background(), "https://example.com/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `{"error":"boom"}` {
		t.Fatalf("body = %q", body)
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}
}

func TestGetTextRetriesTransportErrors(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{name: "default budget recovers", attempts: 0, failFirst: 1, wantCalls: 2},
		{name: "default budget exhausted", attempts: 0, failFirst: 5, wantCalls: 2, wantErr: true},
		{name: "single attempt", attempts: 1, failFirst: 1, wantCalls: 1, wantErr: true},
		{name: "three attempts", attempts: 3, failFirst: 2, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transportErr := errors.New("connection reset")
			calls := 0
			c := &Client{
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					calls++
					if calls <= tt.failFirst {
						return nil, transportErr
					}
					return textResponse(http.StatusOK, "ok", nil), nil
				})},
				MaxAttempts: tt.attempts,
			}

			body, err := c.GetText(context.Background(), "https://example.com/", nil)
			if calls != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, transportErr) {
					t.Fatalf("expected transport error to propagate, got %v", err)
				}
				return
			}
			if err != nil || body != "ok" {
				t.Fatalf("got (%q, %v)", body, err)
			}
		})
	}
}

func TestGetTextDecodesBodies(t *testing.T) {
	const payload = `{"hello":"world"}`

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write([]byte(payload))
	_ = gw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write([]byte(payload))
	_ = bw.Close()

	tests := []struct {
		encoding string
		body     []byte
	}{
		{"", []byte(payload)},
		{"gzip", gz.Bytes()},
		{"br", br.Bytes()},
	}

	for _, tt := range tests {
		t.Run("encoding="+tt.encoding, func(t *testing.T) {
			c := &Client{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if got := r.Header.Get("Accept-Encoding"); got != acceptEncoding {
					t.Errorf("Accept-Encoding = %q", got)
				}
				h := http.Header{}
				if tt.encoding != "" {
					h.Set("Content-Encoding", tt.encoding)
				}
				return &http.Response{StatusCode: http.StatusOK, Header: h, Body: io.NopCloser(bytes.NewReader(tt.body))}, nil
			})}}

			got, err := c.GetText(context.Background(), "https://example.com/", nil)
			if err != nil {
				t.Fatalf("GetText: %v", err)
			}
			if got != payload {
				t.Fatalf("body = %q, want %q", got, payload)
			}
		})
	}
}

func TestGetTextStopsOnCanceledContext(t *testing.T) {
	calls := 0
	c := &Client{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return nil, r.Context().Err()
		})},
		MaxAttempts: 5,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GetText(ctx, "https://example.com/", nil); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if calls > 1 {
		t.Fatalf("expected at most one attempt, got %d", calls)
	}
}

func TestProxyFromURLString(t *testing.T) {
	proxyFunc, err := proxyFromURLString("http://proxy.example.com:8080")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if proxyFunc == nil {
		t.Fatal("Expected proxy function to be non-nil")
	}

	if _, err := proxyFromURLString("://invalid-url"); err == nil {
		t.Fatal("Expected error for invalid proxy URL")
	}
}
