// Package server provides the HTTP webhook API for the recruitment pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/recruit-pipeline/internal/config"
	"github.com/jonathan/recruit-pipeline/internal/db"
	"github.com/jonathan/recruit-pipeline/internal/filestore"
	"github.com/jonathan/recruit-pipeline/internal/observability"
	"github.com/jonathan/recruit-pipeline/internal/pipeline"
	"github.com/jonathan/recruit-pipeline/internal/rubric"
	"github.com/jonathan/recruit-pipeline/internal/server/middleware"
	"github.com/jonathan/recruit-pipeline/internal/tavus"
	"github.com/jonathan/recruit-pipeline/internal/vapi"
)

// CallStarter schedules outbound phone interviews.
type CallStarter interface {
	StartCall(ctx context.Context, call vapi.CallRequest) (*vapi.CallResponse, error)
}

// ConversationCreator creates video interview sessions.
type ConversationCreator interface {
	CreateConversation(ctx context.Context, conv tavus.ConversationRequest) (*tavus.ConversationResponse, error)
}

// ResumeTransferrer moves a résumé from the applicant store to the document
// library.
type ResumeTransferrer interface {
	Run(ctx context.Context, fileID, applicantName string) (*filestore.UploadResult, string, error)
}

// ConversationIndex persists the conversation-to-row mapping written at video
// trigger time.
type ConversationIndex interface {
	SaveConversation(ctx context.Context, conv db.Conversation) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	rubrics    *rubric.Registry
	dispatcher *pipeline.Dispatcher
	records    pipeline.RecordWriter
	calls      CallStarter
	videos     ConversationCreator
	transfer   ResumeTransferrer
	index      ConversationIndex
	printer    *observability.Printer
	verbose    bool
}

// Deps holds the collaborators injected into the server. The transfer, call,
// video, and index collaborators may be nil when the matching integration is
// not configured; their endpoints then return 503.
type Deps struct {
	Rubrics    *rubric.Registry
	Dispatcher *pipeline.Dispatcher
	Records    pipeline.RecordWriter
	Calls      CallStarter
	Videos     ConversationCreator
	Transfer   ResumeTransferrer
	Index      ConversationIndex
	Verbose    bool
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:        cfg,
		rubrics:    deps.Rubrics,
		dispatcher: deps.Dispatcher,
		records:    deps.Records,
		calls:      deps.Calls,
		videos:     deps.Videos,
		transfer:   deps.Transfer,
		index:      deps.Index,
		printer:    observability.NewPrinter(os.Stdout),
		verbose:    deps.Verbose,
	}

	s.httpServer = &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		// Model evaluation happens inside the callback request, so the
		// write timeout has to cover a full evaluate-and-write cycle.
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// routes builds the router. Webhook and trigger endpoints go through bearer
// auth when a webhook secret is configured.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	protect := func(h http.HandlerFunc) http.Handler {
		if s.cfg.WebhookJWTSecret == "" {
			return h
		}
		return middleware.AuthMiddleware(NewWebhookJWTService(s.cfg.WebhookJWTSecret))(h)
	}

	mux.Handle("POST /webhook", protect(s.handleResumeTransfer))
	mux.Handle("POST /zebraagent-trigger", protect(s.handleScreeningTrigger))
	mux.Handle("POST /lionagent-trigger", protect(s.handleTechnicalTrigger))
	mux.Handle("POST /whaleagent-trigger", protect(s.handleVideoTrigger))
	mux.Handle("POST /vapi-callback", protect(s.handleCallCallback))
	mux.Handle("POST /whaleagent-callback", protect(s.handleVideoCallback))

	// Everything else gets the JSON 404 with the route list.
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if s.verbose {
		s.printer.PrintStartup(s.cfg.Port, s.cfg.EnvSummary())
	}

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging with a per-request ID so concurrent
// callback deliveries can be told apart in the log.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		start := time.Now()
		log.Printf("[%s] %s %s %s", requestID, r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s %s completed in %v", requestID, r.Method, r.URL.Path, time.Since(start))
	})
}

// endpointList is shown by the root, health, and not-found responses.
var endpointList = []string{
	"GET / - Server status",
	"GET /health - Health check",
	"POST /webhook - Resume transfer to document library",
	"POST /zebraagent-trigger - Phone screening",
	"POST /lionagent-trigger - Technical interview",
	"POST /whaleagent-trigger - Video behavioral interview",
	"POST /vapi-callback - Process phone/tech calls",
	"POST /whaleagent-callback - Process video interviews",
}

// handleRoot shows the server status and the pipeline stages.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message":            "AI Recruitment Pipeline",
		"status":             "healthy",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"availableEndpoints": endpointList,
		"recruitmentPipeline": map[string]string{
			"stage1": "ZebraAgent - Phone Screening",
			"stage2": "LionAgent - Technical Interview",
			"stage3": "WhaleAgent - Video Behavioral Interview",
		},
	})
}

// handleHealth returns server health plus which integrations are configured.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"endpoints":   endpointList,
		"environment": s.cfg.EnvSummary(),
	})
}

// handleNotFound returns a JSON 404 listing the routes that do exist.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusNotFound, map[string]any{
		"error":           "Route not found",
		"method":          r.Method,
		"path":            r.URL.Path,
		"availableRoutes": endpointList,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// Handler exposes the configured router, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
