// Package receiver accepts frames pushed over HTTP and forwards them to the
// feed.
package receiver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path"

	"github.com/google/uuid"

	"blcsview/internal/codec"
	"blcsview/internal/feed"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:4390"

// maxBodyBytes caps a pushed frame.
const maxBodyBytes = 32 << 20

// Server receives frames via HTTP.
type Server struct {
	sender feed.Sender
	logger *slog.Logger
	server *http.Server
	addr   string
}

// Accepted is the response body of a successful push.
type Accepted struct {
	ID   string `json:"id"`
	Rows int    `json:"rows"`
	Name string `json:"name,omitempty"`
}

// NewServer creates a receiver listening on addr.
func NewServer(addr string, sender feed.Sender, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		sender: sender,
		logger: logger.With("component", "receiver"),
		addr:   addr,
	}
	s.server = &http.Server{Handler: s.Handler()}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", s.handleFrame)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Start binds the listener and serves in the background. It returns once
// the port is bound so Addr reports the real address.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("receiver listen %s: %w", s.addr, err)
	}
	s.addr = ln.Addr().String()
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("receiver stopped", "error", err)
		}
	}()
	s.logger.Info("receiver listening", "addr", s.addr)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// handleFrame handles POST /frames. The encoding comes from the
// Content-Type header, or from the extension of the ?name= parameter.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	format, err := codec.FormatForContentType(r.Header.Get("Content-Type"))
	if err != nil && name != "" {
		format, err = codec.FormatFor(name)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	id := uuid.NewString()
	if name == "" {
		name = id + "." + format.String()
	}
	lf, err := codec.DecodeAs(format, path.Base(name), body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.sender.SendFrame(feed.Delivery{
		Frame:   lf.Frame,
		Source:  feed.SourceHTTP,
		Topic:   name,
		Name:    lf.Meta.Name,
		Version: lf.Meta.Version,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.logger.Debug("frame received", "id", id, "name", name, "rows", lf.Frame.Height(), "remote", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(Accepted{ID: id, Rows: lf.Frame.Height(), Name: lf.Meta.Name})
}
