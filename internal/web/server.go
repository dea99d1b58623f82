// Package web provides the HTTP telemetry server for the radar-sensor
// daemon. The remote viewer polls /data for the latest snapshot; /index.json
// and the index page carry the full status. Every handler answers from the
// tracker's last-published snapshot and never waits on the scan loop.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/radar-sensor/internal/telemetry"
)

// Server serves the telemetry endpoints over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *telemetry.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *telemetry.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/data", s.handleData)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(telemetry.FormatJSON(snap))
}

// handleData serves the flat record the remote viewer polls.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(telemetry.FormatData(snap))
}
