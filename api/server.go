package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fabfab/cvchat/chat"
	"github.com/fabfab/cvchat/history"
)

//go:embed openapi.yaml
var openAPISpecYAML []byte

// Asker answers questions about the loaded CV.
type Asker interface {
	Ask(ctx context.Context, req chat.Request) chat.Result
	DocumentLoaded() bool
}

// Server exposes the chat workflow over HTTP and WebSocket.
type Server struct {
	chat    Asker
	history history.Store
	logger  *log.Logger
	handler http.Handler
}

type chatRequest struct {
	Message     string   `json:"message"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type chatResponse struct {
	Reply          string  `json:"reply"`
	ProcessingTime float64 `json:"processing_time"`
	Thinking       string  `json:"thinking,omitempty"`
	Language       string  `json:"language,omitempty"`
}

type errorResponse struct {
	Detail         string   `json:"detail"`
	ProcessingTime *float64 `json:"processing_time,omitempty"`
}

type healthResponse struct {
	Status   string `json:"status"`
	CVLoaded bool   `json:"cv_loaded"`
}

// New constructs a Server. A nil history store falls back to an in-memory one.
func New(asker Asker, store history.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if store == nil {
		store = history.NewMemoryStore(history.DefaultTTL)
	}

	s := &Server{chat: asker, history: store, logger: logger}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(chimiddleware.Recoverer)
	// Development policy: every origin, method and header is allowed.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/", s.handleRoot)
	r.Handle("/assets/*", http.StripPrefix("/assets/", s.staticHandler()))
	r.Get("/health", s.handleHealth)
	r.Get("/openapi.yaml", s.handleOpenAPI)
	r.Post("/chat", s.handleChat)
	r.Get("/ws", s.handleWebSocket)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", CVLoaded: s.chat.DocumentLoaded()})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=\"openapi.yaml\"")
	_, _ = w.Write(openAPISpecYAML)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		elapsed := time.Since(start).Seconds()
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err), &elapsed)
		return
	}

	res := s.chat.Ask(r.Context(), chat.Request{
		Message:     req.Message,
		Model:       req.Model,
		Temperature: req.Temperature,
	})

	elapsed := res.ProcessingTime.Seconds()
	if res.Failure != nil {
		s.writeError(w, statusForFailure(res.Failure), res.Failure, &elapsed)
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Reply:          res.Reply,
		ProcessingTime: elapsed,
		Thinking:       res.Thinking,
		Language:       res.Language,
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path), nil)
}

func statusForFailure(f *chat.Failure) int {
	if f.Kind == chat.FailureInvalidRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error, processingTime *float64) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Detail: err.Error(), ProcessingTime: processingTime})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
