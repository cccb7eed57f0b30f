package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Brandon541/BBS/internal/ratelimit"
	"github.com/Brandon541/BBS/internal/session"
)

const sessionCookie = "bbs_session"

// Server exposes the BBS over HTTP for browser clients. Each browser
// holds a session id in a cookie; every input line is one POST.
type Server struct {
	manager *session.Manager
	limiter *ratelimit.Limiter
	router  chi.Router
}

func NewServer(manager *session.Manager, limiter *ratelimit.Limiter) *Server {
	s := &Server{
		manager: manager,
		limiter: limiter,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", s.handleIndex)
	r.Route("/api/bbs", func(r chi.Router) {
		r.Post("/input", s.handleInput)
		r.Post("/end", s.handleEnd)
	})

	s.router = r
	return s
}

// ListenAndServe blocks serving HTTP on addr.
func (s *Server) ListenAndServe(bindAddr string, port int) error {
	addr := fmt.Sprintf("%s:%d", bindAddr, port)
	log.Printf("Web server listening on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv.ListenAndServe()
}

// Handler exposes the router. Test hook.
func (s *Server) Handler() http.Handler {
	return s.router
}

type inputRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	host := clientHost(r)

	if s.limiter.IsLimited(host) {
		writeJSON(w, http.StatusTooManyRequests, &session.Response{
			Output: []string{"Rate limit exceeded. Please slow down."},
			Prompt: "Press Enter to continue...",
		})
		return
	}

	var req inputRequest
	if r.Body != nil {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	id := s.sessionID(w, r)
	resp := s.manager.Dispatch(id, host, req.Input)
	s.manager.EvictExpired()

	if resp.SessionEnded {
		s.clearCookie(w)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.manager.End(c.Value)
	}
	s.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// sessionID returns the browser's session id, minting one when the
// cookie is missing.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return id
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Write response: %v", err)
	}
}

func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
