// Package server serves input decks over HTTP to the compute jobs
// that consume them, keeping every deck fresh with a background
// refresh loop and reporting per-source health.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-http-utils/etag"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/qchem-tools/go-deck-config/model"
	"github.com/qchem-tools/go-deck-config/source"
)

// minRefreshInterval is the floor for the refresh loop; every backend
// except the local file talks to a remote service on each tick.
const minRefreshInterval = 5 * time.Second

// RepositoryStatus describes the refresh state of one deck source.
type RepositoryStatus struct {
	Name         string    `json:"name"`
	RefreshCount int       `json:"refresh_count"`
	LastRefresh  time.Time `json:"last_refresh"`
	IsHealthy    bool      `json:"is_healthy"`
	LastError    string    `json:"last_error,omitempty"`
}

type Server struct {
	Repositories    []source.Repository
	RefreshInterval time.Duration
	AuthKey         string

	cancel     context.CancelFunc
	wg         sync.WaitGroup
	httpServer *http.Server

	mu     sync.RWMutex
	status map[string]*RepositoryStatus
}

// NewServer creates a server over the given repositories, refreshes
// each of them once, and starts a background refresh goroutine per
// repository. Refresh intervals below the 5 second floor are raised
// to it.
func NewServer(ctx context.Context, repositories []source.Repository, refreshInterval time.Duration) *Server {
	if refreshInterval < minRefreshInterval {
		logrus.Warn("refresh interval too low, setting it to 5 seconds")
		refreshInterval = minRefreshInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	server := &Server{
		Repositories:    repositories,
		RefreshInterval: refreshInterval,
		cancel:          cancel,
		status:          make(map[string]*RepositoryStatus),
	}
	for _, repo := range server.Repositories {
		server.status[repo.GetName()] = &RepositoryStatus{Name: repo.GetName()}
		server.refreshOne(repo)
	}
	for _, repo := range server.Repositories {
		server.wg.Add(1)
		go server.refreshLoop(ctx, repo)
	}
	return server
}

// refreshOne refreshes a single repository and records the outcome.
func (s *Server) refreshOne(repo source.Repository) {
	err := repo.Refresh()
	if err != nil {
		logrus.WithError(err).WithField("source", repo.GetName()).Error("error refreshing repository")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[repo.GetName()]
	st.RefreshCount++
	st.LastRefresh = time.Now()
	st.IsHealthy = err == nil
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
	}
}

func (s *Server) refreshLoop(ctx context.Context, repo source.Repository) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.refreshOne(repo)
		case <-ctx.Done():
			return
		}
	}
}

// IsHealthy reports whether the last refresh of every repository
// succeeded.
func (s *Server) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.status {
		if !st.IsHealthy {
			return false
		}
	}
	return true
}

// IsReady reports whether at least one repository has a deck to serve.
func (s *Server) IsReady() bool {
	for _, repo := range s.Repositories {
		if repo.GetDeck() != nil {
			return true
		}
	}
	return false
}

// GetRepositoryStatus returns a snapshot of every repository's refresh
// state keyed by source name.
func (s *Server) GetRepositoryStatus() map[string]RepositoryStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]RepositoryStatus, len(s.status))
	for name, st := range s.status {
		snapshot[name] = *st
	}
	return snapshot
}

// Stop cancels the background refresh goroutines and waits for them
// to exit.
func (s *Server) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Start serves HTTP on addr and blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	logrus.WithField("addr", addr).Info("Starting server")

	handler := etag.Handler(s.CreateHandlers(), false)
	if s.AuthKey != "" {
		handler = Auth(handler, s.AuthKey)
	}

	s.httpServer = &http.Server{Addr: addr, Handler: handler}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener and the refresh loops.
func (s *Server) Shutdown() error {
	s.Stop()
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// CreateHandlers builds the route table: /health, /ready and /status
// for probes, and one route per deck source serving the raw deck
// (GET/HEAD), or a yaml/json rendering when ?format= asks for one.
func (s *Server) CreateHandlers() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.readOnly(s.handleHealth))
	mux.HandleFunc("/ready", s.readOnly(s.handleReady))
	mux.HandleFunc("/status", s.readOnly(s.handleStatus))
	for _, repo := range s.Repositories {
		repo := repo
		mux.HandleFunc("/"+repo.GetName(), s.readOnly(func(w http.ResponseWriter, r *http.Request) {
			s.handleDeck(w, r, repo)
		}))
	}
	return mux
}

// readOnly rejects everything but GET and HEAD.
func (s *Server) readOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.IsHealthy() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unhealthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"healthy":      s.IsHealthy(),
		"ready":        s.IsReady(),
		"repositories": s.GetRepositoryStatus(),
	})
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request, repo source.Repository) {
	d := repo.GetDeck()
	if d == nil {
		http.Error(w, "deck not available", http.StatusServiceUnavailable)
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "raw":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write(repo.GetRawData()); err != nil {
			logrus.WithError(err).Error("error writing response")
		}
	case "json":
		params := make([]model.Parameter, 0, d.Len())
		for _, name := range d.Keys() {
			v, _ := d.Lookup(name)
			params = append(params, model.Parameter{
				Name:  name,
				Value: v.Interface(),
				Kind:  v.Kind().String(),
			})
		}
		writeJSON(w, http.StatusOK, params)
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
		out, err := yaml.Marshal(d.Map())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(out); err != nil {
			logrus.WithError(err).Error("error writing response")
		}
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("error writing response")
	}
}
