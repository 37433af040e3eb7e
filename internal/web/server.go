// Package web is the HTTP shell around the pipeline: a trigger UI, a log
// poll endpoint and export downloads.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"leadscout/internal/pipeline"
	"leadscout/internal/runlog"
	"leadscout/internal/source"
)

// RunParams carries what the trigger form submitted.
type RunParams struct {
	Location    string
	RadiusMiles int
	Categories  []string
}

// RunnerFactory builds a fresh runner and searcher for one run.
type RunnerFactory func(params RunParams) (*pipeline.Runner, source.Searcher, error)

// Exporter writes a run's contacts to a CSV file. May be nil.
type Exporter interface {
	ExportCSV(ctx context.Context, path, runID string) error
}

type Server struct {
	logger     *slog.Logger
	buf        *runlog.Buffer
	factory    RunnerFactory
	exporter   Exporter
	exportDir  string
	categories []string

	mu      sync.Mutex
	running bool
	stop    *pipeline.StopToken
}

func NewServer(logger *slog.Logger, buf *runlog.Buffer, factory RunnerFactory, exporter Exporter, exportDir string, categories []string) *Server {
	return &Server{
		logger:     logger,
		buf:        buf,
		factory:    factory,
		exporter:   exporter,
		exportDir:  exportDir,
		categories: categories,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/run", s.handleRun)
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/logs", s.handleLogs)
	mux.HandleFunc("/exports", s.handleExports)
	mux.HandleFunc("/download/", s.handleDownload)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, map[string]any{"Categories": s.categories}); err != nil {
		s.logger.Error("Template render failed", "err", err)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	params := RunParams{
		Location:    r.URL.Query().Get("loc"),
		RadiusMiles: 5,
	}
	if raw := r.URL.Query().Get("r"); raw != "" {
		if miles, err := strconv.Atoi(raw); err == nil && miles > 0 {
			params.RadiusMiles = miles
		}
	}
	for _, t := range strings.Split(r.URL.Query().Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			params.Categories = append(params.Categories, t)
		}
	}
	if len(params.Categories) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"started": false, "error": "no categories selected"})
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]any{"started": false, "error": "a run is already in progress"})
		return
	}

	runner, searcher, err := s.factory(params)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("Run setup failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"started": false, "error": err.Error()})
		return
	}

	stop := pipeline.NewStopToken()
	s.running = true
	s.stop = stop
	s.mu.Unlock()

	go s.runWorker(runner, searcher, params, stop)

	writeJSON(w, http.StatusOK, map[string]any{"started": true, "loc": params.Location})
}

// runWorker is the single background worker for one run.
func (s *Server) runWorker(runner *pipeline.Runner, searcher source.Searcher, params RunParams, stop *pipeline.StopToken) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.stop = nil
		s.mu.Unlock()
	}()

	ctx := context.Background()
	if _, err := runner.Run(ctx, searcher, params.Categories, stop); err != nil {
		s.logger.Error("Run aborted", "err", err)
		return
	}

	if s.exporter == nil {
		return
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.logger.Error("Export dir creation failed", "err", err)
		return
	}
	path := filepath.Join(s.exportDir, fmt.Sprintf("leads_%s.csv", runner.RunID()))
	if err := s.exporter.ExportCSV(ctx, path, runner.RunID()); err != nil {
		s.logger.Error("Export failed", "err", err)
		return
	}
	s.buf.Appendf("Export ready: %s", filepath.Base(path))
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()

	if stop == nil {
		writeJSON(w, http.StatusOK, map[string]any{"stopping": false, "error": "no run in progress"})
		return
	}
	stop.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"stopping": true})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"logs": s.buf.Lines()})
}

func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.exportDir)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"files": []string{}})
		return
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			files = append(files, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(strings.TrimPrefix(r.URL.Path, "/download/"))
	if name == "" || name == "." || name == "/" {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.exportDir, name)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
