package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ytget/ytinfo/errs"
	"github.com/ytget/ytinfo/types"
)

const testID = "dQw4w9WgXcQ"

type stubResolver struct {
	info  *types.VideoInfo
	err   error
	calls []string
}

func (s *stubResolver) ResolveBasic(_ context.Context, id string) (*types.VideoInfo, error) {
	s.calls = append(s.calls, "basic:"+id)
	return s.info, s.err
}

func (s *stubResolver) ResolveFull(_ context.Context, id string) (*types.VideoInfo, error) {
	s.calls = append(s.calls, "full:"+id)
	return s.info, s.err
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestInfoRoutes(t *testing.T) {
	tests := []struct {
		path string
		call string
		full bool
	}{
		{"/info/" + testID, "full:" + testID, true},
		{"/basicinfo/" + testID, "basic:" + testID, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			stub := &stubResolver{info: &types.VideoInfo{VideoID: testID, Title: "t", Full: tt.full, Formats: []types.Format{}}}
			rec := serve(NewHTTPHandler(stub), http.MethodGet, tt.path)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("CORS header = %q", got)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("content type = %q", got)
			}
			if len(stub.calls) != 1 || stub.calls[0] != tt.call {
				t.Fatalf("calls = %v", stub.calls)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body: %v", err)
			}
			if body["video_id"] != testID || body["full"] != tt.full {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestInvalidIDSkipsResolver(t *testing.T) {
	stub := &stubResolver{}
	h := NewHTTPHandler(stub)
	for _, path := range []string{"/info/short", "/basicinfo/dQw4w9WgXc%21"} {
		rec := serve(h, http.MethodGet, path)
		if rec.Code != http.StatusBadRequest || strings.TrimSpace(rec.Body.String()) != "Invalid ID" {
			t.Fatalf("%s: %d %q", path, rec.Code, rec.Body.String())
		}
	}
	if len(stub.calls) != 0 {
		t.Fatalf("resolver called for invalid ids: %v", stub.calls)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"unavailable", errs.Unavailable("ERROR", "Video unavailable"), http.StatusOK, `{"error":"Video unavailable"}`},
		{"legacy fail", errs.Unavailable("fail", "Code 150: Embedding disabled"), http.StatusOK, `{"error":"Code 150: Embedding disabled"}`},
		{"malformed", errs.Malformed("Error parsing info: x", nil), http.StatusInternalServerError, "Internal Server Error"},
		{"transport", fmt.Errorf("dial tcp: %w", context.DeadlineExceeded), http.StatusInternalServerError, "Internal Server Error"},
		{"invalid id from resolver", fmt.Errorf("%w: %q", errs.ErrInvalidID, "x"), http.StatusBadRequest, "Invalid ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHTTPHandler(&stubResolver{err: tt.err}), http.MethodGet, "/info/"+testID)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.body {
				t.Fatalf("body = %q, want %q", got, tt.body)
			}
		})
	}
}

func TestDefaultPage(t *testing.T) {
	h := NewHTTPHandler(&stubResolver{err: errors.New("unused")})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/watch?v=" + testID},
		{http.MethodPost, "/info/" + testID},
		{http.MethodGet, "/info/" + testID + "/extra"},
	} {
		rec := serve(h, tc.method, tc.path)
		if rec.Code != http.StatusOK || rec.Body.String() != defaultPage {
			t.Fatalf("%s %s: %d %q", tc.method, tc.path, rec.Code, rec.Body.String())
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
		}
	}
}

func TestServerRunShutdown(t *testing.T) {
	s := New("127.0.0.1:0", &stubResolver{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
