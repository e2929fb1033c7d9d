// Package server exposes video resolution over HTTP.
//
//	GET /info/{id}       full resolution
//	GET /basicinfo/{id}  basic resolution
//
// Any other request gets a small HTML page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ytget/ytinfo/errs"
	"github.com/ytget/ytinfo/internal/logger"
	"github.com/ytget/ytinfo/types"
	"github.com/ytget/ytinfo/youtube/videoid"
)

const defaultPage = "<h1>DEFAULT RESPONSE</h1>"

// Resolver is the resolution capability served by the handler.
type Resolver interface {
	ResolveBasic(ctx context.Context, id string) (*types.VideoInfo, error)
	ResolveFull(ctx context.Context, id string) (*types.VideoInfo, error)
}

// HTTPHandler routes requests to a Resolver.
type HTTPHandler struct {
	resolver Resolver
	mux      *http.ServeMux
}

// NewHTTPHandler creates the handler with its routes.
func NewHTTPHandler(r Resolver) *HTTPHandler {
	h := &HTTPHandler{resolver: r, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /info/{id}", h.HandleFullInfo)
	h.mux.HandleFunc("GET /basicinfo/{id}", h.HandleBasicInfo)
	h.mux.HandleFunc("/", h.HandleDefault)
	return h
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	h.mux.ServeHTTP(w, r)
}

// HandleFullInfo serves /info/{id}.
func (h *HTTPHandler) HandleFullInfo(w http.ResponseWriter, r *http.Request) {
	h.serveInfo(w, r, h.resolver.ResolveFull)
}

// HandleBasicInfo serves /basicinfo/{id}.
func (h *HTTPHandler) HandleBasicInfo(w http.ResponseWriter, r *http.Request) {
	h.serveInfo(w, r, h.resolver.ResolveBasic)
}

// HandleDefault serves every unmatched request.
func (h *HTTPHandler) HandleDefault(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(defaultPage))
}

type resolveFunc func(ctx context.Context, id string) (*types.VideoInfo, error)

func (h *HTTPHandler) serveInfo(w http.ResponseWriter, r *http.Request, resolve resolveFunc) {
	log := logger.WithComponent(logger.ComponentServer)
	id := r.PathValue("id")
	if !videoid.Validate(id) {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	start := time.Now()
	info, err := resolve(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	log.Info("Resolved", map[string]interface{}{
		"video_id": id,
		"path":     r.URL.Path,
		"formats":  len(info.Formats),
		"elapsed":  time.Since(start).String(),
	})
	writeJSON(w, http.StatusOK, info)
}

// writeError reports upstream unavailability to the caller and hides every
// other failure behind a 500.
func (h *HTTPHandler) writeError(w http.ResponseWriter, id string, err error) {
	log := logger.WithComponent(logger.ComponentServer)

	if errors.Is(err, errs.ErrInvalidID) {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if errs.IsDomain(err) {
		log.Info("Video unavailable", map[string]interface{}{"video_id": id, "reason": err.Error()})
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	log.Error("Resolution failed", map[string]interface{}{"video_id": id, "error": err.Error()})
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithComponent(logger.ComponentServer).Warn("Write response failed", map[string]interface{}{"error": err.Error()})
	}
}

// Server wraps http.Server with the handler and a graceful shutdown.
type Server struct {
	httpServer *http.Server
}

// New creates a server listening on addr.
func New(addr string, r Resolver) *Server {
	return &Server{httpServer: &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Run serves until ctx is done, then shuts down within five seconds.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent(logger.ComponentServer)
	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", map[string]interface{}{"addr": s.httpServer.Addr})
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}
