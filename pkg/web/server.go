package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/tmaxmax/go-sse"

	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/runner"
)

//go:embed templates
var content embed.FS

// ServerConfig holds configuration for the web server.
type ServerConfig struct {
	Port      int    // port to listen on
	Target    string // login page under test
	Engine    string // browser engine name
	CasesFile string // cases table, empty for the built-in one
	Revision  string // branch@hash of the cases repository
}

// Server provides the live dashboard. it implements runner.Listener,
// every attempt is kept in the buffer and published to SSE clients.
type Server struct {
	cfg    ServerConfig
	events *sse.Server
	buffer *Buffer
	tmpl   *template.Template

	mu  sync.Mutex
	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig, buffer *Buffer) (*Server, error) {
	tmpl, err := template.ParseFS(content, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Server{cfg: cfg, events: &sse.Server{}, buffer: buffer, tmpl: tmpl}, nil
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/events", s.events)
	mux.HandleFunc("/api/results", s.handleResults)
	return mux
}

// Start begins listening for HTTP requests.
// blocks until ctx is canceled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			log.Printf("[WARN] %v", err)
		}
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http server: %w", err)
}

// Stop closes SSE streams and shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.events.Shutdown(ctx); err != nil && !errors.Is(err, sse.ErrProviderClosed) {
		return fmt.Errorf("shutdown event stream: %w", err)
	}
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// RunStarted resets the buffer for a new run of total attempts.
func (s *Server) RunStarted(total int) {
	s.buffer.Clear()
	s.publish(NewRunStartedEvent(total))
}

// CaseStarted publishes an attempt start.
func (s *Server) CaseStarted(c login.Case, attempt int) {
	s.publish(NewCaseStartedEvent(c, attempt))
}

// CaseFinished publishes an attempt verdict.
func (s *Server) CaseFinished(res login.Result, attempt int) {
	s.publish(NewCaseFinishedEvent(res, attempt))
}

// RunFinished publishes the run summary.
func (s *Server) RunFinished(sum runner.Summary) {
	s.publish(NewRunFinishedEvent(sum))
}

func (s *Server) publish(e Event) {
	s.buffer.Add(e)
	data, err := e.JSON()
	if err != nil {
		log.Printf("[WARN] %v", err)
		return
	}
	msg := &sse.Message{Type: sse.Type(string(e.Type))}
	msg.AppendData(string(data))
	if err := s.events.Publish(msg); err != nil && !errors.Is(err, sse.ErrProviderClosed) {
		log.Printf("[WARN] publish %s event: %v", e.Type, err)
	}
}

// handleIndex serves the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, s.cfg); err != nil {
		http.Error(w, "template execution error", http.StatusInternalServerError)
	}
}

// resultsResponse is the /api/results snapshot.
type resultsResponse struct {
	Target string  `json:"target"`
	Engine string  `json:"engine"`
	Events []Event `json:"events"`
}

// handleResults serves buffered events so a page opened mid-run can catch up.
// ?case=<name> narrows the snapshot to the attempts of one case.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := resultsResponse{Target: s.cfg.Target, Engine: s.cfg.Engine}
	if name := r.URL.Query().Get("case"); name != "" {
		resp.Events = s.buffer.ByCase(name)
	} else {
		resp.Events = s.buffer.All()
	}
	if resp.Events == nil {
		resp.Events = []Event{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] encode results: %v", err)
	}
}
