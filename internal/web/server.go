// Package web serves the task page over HTTP.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/todolist/internal/tasks"
)

// maxFormBytes caps the size of a posted form.
const maxFormBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Host      string
	Port      int
	StorePath string
	Title     string

	// ReportMissing surfaces toggle/delete of unknown task ids as errors.
	ReportMissing bool

	// StoreOptions are passed to every per-request tasks.Store.
	StoreOptions []tasks.Option
}

// Server is the todolist HTTP server.
type Server struct {
	httpServer *http.Server
	renderer   *Renderer
	handler    FormHandler
	opts       Options

	// mu serializes the load→mutate→save→render cycle of each request.
	mu sync.Mutex
}

// NewServer creates a new server.
func NewServer(opts Options) *Server {
	s := &Server{
		renderer: NewRenderer(),
		handler:  FormHandler{ReportMissing: opts.ReportMissing},
		opts:     opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)
	r.HandleFunc("/", s.handleIndex)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("todolist listening", "addr", ln.Addr().String(), "store", s.opts.StorePath)
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleIndex renders the page; POST requests first apply the submitted form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := tasks.NewStore(s.opts.StorePath, s.opts.StoreOptions...)
	log := slog.With("request_id", middleware.GetReqID(r.Context()))

	var msg *Message
	loadErr := store.Load()
	if loadErr != nil {
		log.Error("load tasks", "path", s.opts.StorePath, "error", loadErr)
		msg = msgLoadFailed
	}

	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		// No mutations after a failed load: saving would replace the file with an empty list.
		if loadErr == nil {
			msg = pick(msg, s.handler.Handle(log, store, r.PostForm))
		}
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, s.opts.Title, store, msg); err != nil {
		log.Error("render page", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
