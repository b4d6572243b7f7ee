// ABOUTME: HTTP server exposing the published feeds and group management endpoints
// ABOUTME: Thin chi router over the store, publisher and scheduler

package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"rssfilter-api/core/interfaces"
)

// Publisher is the slice of the feed publisher the API needs.
type Publisher interface {
	OutputPath(group string) string
}

// Refresher triggers an out-of-cycle refresh for a group.
type Refresher interface {
	Trigger(name string)
}

// Config holds the API server configuration.
type Config struct {
	Host string
	Port string
}

// Server serves the published feeds and a small management surface.
type Server struct {
	cfg       Config
	logger    interfaces.Logger
	store     interfaces.EntryStore
	publisher Publisher
	refresher Refresher
	groups    []string

	httpServer *http.Server
}

// NewServer creates the API server. groups is the list of configured
// group names, used for listing and for rejecting unknown groups.
func NewServer(cfg Config, logger interfaces.Logger, store interfaces.EntryStore, publisher Publisher, refresher Refresher, groups []string) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		publisher: publisher,
		refresher: refresher,
		groups:    groups,
	}

	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	router.Get("/health", s.handleHealth)
	router.Get("/groups", s.handleGroups)
	router.Get("/rss/{group}", s.handleFeed)
	router.Post("/refresh/{group}", s.handleRefresh)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// groupStatus is one row in the /groups response
type groupStatus struct {
	Name        string     `json:"name"`
	EntryCount  int        `json:"entry_count"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	FeedURL     string     `json:"feed_url"`
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	out := make([]groupStatus, 0, len(s.groups))
	for _, name := range s.groups {
		status := groupStatus{
			Name:    name,
			FeedURL: "/rss/" + name,
		}

		count, err := s.store.EntryCount(r.Context(), name, true)
		if err != nil {
			s.logger.Warn("failed to count entries", map[string]interface{}{
				"group": name,
				"error": err.Error(),
			})
		} else {
			status.EntryCount = count
		}

		if wm, ok, err := s.store.Watermark(r.Context(), name); err == nil && ok {
			status.LastUpdated = &wm
		}

		out = append(out, status)
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	if !s.knownGroup(group) {
		writeError(w, http.StatusNotFound, "unknown group")
		return
	}

	path := s.publisher.OutputPath(group)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "feed not published yet")
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	http.ServeFile(w, r, path)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	if !s.knownGroup(group) {
		writeError(w, http.StatusNotFound, "unknown group")
		return
	}

	s.refresher.Trigger(group)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "refresh scheduled",
		"group":  group,
	})
}

func (s *Server) knownGroup(name string) bool {
	for _, g := range s.groups {
		if g == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
