package client

import (
	"compress/bzip2"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/ytget/ytinfo/internal/logger"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 2

	userAgentValue = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	acceptEncoding = "gzip, deflate, br"
)

// defaultTransport is a tuned HTTP transport reused across clients.
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ResponseHeaderTimeout: 10 * time.Second,
	ForceAttemptHTTP2:     true,
	// Bodies are decoded by readBody, brotli included.
	DisableCompression: true,
	ReadBufferSize:     16 * 1024,
	WriteBufferSize:    16 * 1024,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Fetcher retrieves the text body of a URL.
type Fetcher interface {
	GetText(ctx context.Context, rawURL string, header http.Header) (string, error)
}

// Config holds optional client parameters. Zero values use defaults.
type Config struct {
	Timeout     time.Duration
	MaxAttempts int
	UserAgent   string
	ProxyURL    string
}

// Client wraps http.Client with a fixed attempt budget and default headers.
type Client struct {
	HTTPClient  *http.Client
	MaxAttempts int
	UserAgent   string
}

// New creates a new Client with a tuned Transport, default timeout and two attempts.
func New() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: defaultTransport,
		},
		MaxAttempts: defaultMaxAttempts,
		UserAgent:   userAgentValue,
	}
}

// NewWith creates a new client with provided config. Zero values use defaults.
func NewWith(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgentValue
	}

	tr := defaultTransport.Clone()
	if cfg.ProxyURL != "" {
		if proxyFunc, err := proxyFromURLString(cfg.ProxyURL); err == nil {
			tr.Proxy = proxyFunc
		}
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		MaxAttempts: attempts,
		UserAgent:   ua,
	}
}

// GetText performs a GET and returns the decoded body as text.
//
// Only transport failures are retried, immediately and up to MaxAttempts in
// total. The status code is not inspected: the upstream reports most failures
// inside a 200 body. The last transport error is returned unwrapped.
func (c *Client) GetText(ctx context.Context, rawURL string, header http.Header) (string, error) {
	log := logger.WithComponent(logger.ComponentClient)

	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.getOnce(ctx, rawURL, header)
		if err == nil {
			log.Trace("Fetched", map[string]interface{}{
				"url":     rawURL,
				"attempt": attempt,
				"bytes":   len(body),
			})
			return body, nil
		}
		lastErr = err
		log.Debug("Fetch attempt failed", map[string]interface{}{
			"url":     rawURL,
			"attempt": attempt,
			"error":   err.Error(),
		})
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) getOnce(ctx context.Context, rawURL string, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		ua := c.UserAgent
		if ua == "" {
			ua = userAgentValue
		}
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept-Encoding", acceptEncoding)

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout, Transport: defaultTransport}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	return readBody(resp)
}

// readBody decodes the response body according to its Content-Encoding.
func readBody(resp *http.Response) (string, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer func() { _ = fr.Close() }()
		reader = fr
	case "bzip2":
		reader = bzip2.NewReader(resp.Body)
	}

	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// proxyFromURLString parses a proxy URL and returns a Proxy function.
func proxyFromURLString(raw string) (func(*http.Request) (*url.URL, error), error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return http.ProxyURL(u), nil
}
