// Package httpapi exposes the four memory tools over a minimal
// non-streaming HTTP/JSON surface, an alternative to the MCP stdio
// transport for operators who prefer plain HTTP.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
)

// Server is an HTTP server exposing search, memorize, feedback and
// delete under a single tool-call route.
type Server struct {
	disp      *dispatch.Dispatcher
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server bound to disp. authToken, when
// non-empty, is required as a bearer token on every tool-call request;
// GET /healthz needs no token.
func NewServer(disp *dispatch.Dispatcher, logger *slog.Logger, authToken string) *Server {
	return &Server{disp: disp, logger: logger, authToken: authToken}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /v1/tools/{name}", s.auth(s.handleTool))
	return mux
}

// auth wraps a handler with bearer-token authentication when
// authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// toolResponse is the envelope memorize, feedback and delete return on
// success, and every error response uses: either a text result, or an
// error describing why the call failed. search returns
// {"results": [...]} instead.
type toolResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var args map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	switch name {
	case "search":
		s.callSearch(w, r.Context(), args)
	case "memorize":
		s.callMemorize(w, r.Context(), args)
	case "feedback":
		s.callFeedback(w, r.Context(), args)
	case "delete":
		s.callDelete(w, r.Context(), args)
	default:
		s.writeError(w, http.StatusNotFound, "unknown tool: "+name)
	}
}

func (s *Server) callSearch(w http.ResponseWriter, ctx context.Context, args map[string]any) {
	req, err := dispatch.ParseSearch(args)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	hits, err := s.disp.Search(ctx, req)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}

func (s *Server) callMemorize(w http.ResponseWriter, ctx context.Context, args map[string]any) {
	req, err := dispatch.ParseMemorize(args)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	msg, err := s.disp.Memorize(ctx, req)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toolResponse{Text: msg})
}

func (s *Server) callFeedback(w http.ResponseWriter, ctx context.Context, args map[string]any) {
	req, err := dispatch.ParseFeedback(args)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	msg, err := s.disp.Feedback(ctx, req)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toolResponse{Text: msg})
}

func (s *Server) callDelete(w http.ResponseWriter, ctx context.Context, args map[string]any) {
	req, err := dispatch.ParseDelete(args)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	msg, err := s.disp.Delete(ctx, req)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toolResponse{Text: msg})
}

// writeDispatchError maps a dispatch.Error's kind onto an HTTP status.
func (s *Server) writeDispatchError(w http.ResponseWriter, err error) {
	var dErr *dispatch.Error
	if errors.As(err, &dErr) {
		status := http.StatusInternalServerError
		switch dErr.Kind {
		case dispatch.InvalidArgument:
			status = http.StatusBadRequest
		case dispatch.EmbedderUnavailable:
			status = http.StatusServiceUnavailable
		case dispatch.EmbedderFailure, dispatch.StorageFailure:
			status = http.StatusInternalServerError
		}
		s.logger.Error("tool call failed", "kind", dErr.Kind.String(), "tool", dErr.Tool, "msg", dErr.Msg)
		s.writeError(w, status, dErr.Msg)
		return
	}
	s.logger.Error("tool call failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, toolResponse{Error: msg})
}

// Shutdown gracefully shuts down srv with the given timeout.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
