// Package http exposes the growth engine over a REST API. This is the
// surface conversational layers and other external collaborators talk to;
// the engine itself stays transport-agnostic.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jayai/growth-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host is the bind address.
	Host string

	// Port is the listen port.
	Port int

	// ReadTimeout bounds reading the full request.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration

	// MaxHeaderBytes caps request header size.
	MaxHeaderBytes int

	// EnableCORS turns on CORS handling.
	EnableCORS bool

	// AllowedOrigins lists origins allowed by CORS ("*" allows all).
	AllowedOrigins []string

	// RateLimitPerMinute caps requests per client IP per minute. Zero
	// disables rate limiting.
	RateLimitPerMinute int
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               8080,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxHeaderBytes:     1 << 20,
		EnableCORS:         true,
		AllowedOrigins:     []string{"*"},
		RateLimitPerMinute: 120,
	}
}

// Address returns the host:port pair the server binds to.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker reports backing-store health for the readiness endpoint.
type HealthChecker func(ctx context.Context) error

// Server serves the growth engine API.
type Server struct {
	config  Config
	engine  GrowthEngine
	health  HealthChecker
	logger  *logger.Logger
	limiter *ipLimiter

	httpServer *http.Server

	mu      sync.Mutex
	running bool
}

// NewServer creates a new HTTP server around the growth engine. The health
// checker is optional; without one readiness always succeeds.
func NewServer(config Config, eng GrowthEngine, health HealthChecker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		config: config,
		engine: eng,
		health: health,
		logger: log.With(logger.Component("http")),
	}
	if config.RateLimitPerMinute > 0 {
		s.limiter = newIPLimiter(config.RateLimitPerMinute, time.Minute)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.wrap(mux),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth) // Kubernetes alias
	mux.HandleFunc("GET /ready", s.handleReady)

	// ─────────────────────────────────────────────────────────────────────────
	// API v1 - Growth
	// ─────────────────────────────────────────────────────────────────────────
	mux.HandleFunc("POST /v1/users/{id}/activities", s.handleRecordActivity)
	mux.HandleFunc("GET /v1/users/{id}/profile", s.handleGetProfile)
	mux.HandleFunc("GET /v1/users/{id}/challenges", s.handleGetChallenges)
	mux.HandleFunc("POST /v1/users/{id}/challenges/complete", s.handleCompleteChallenge)

	// ─────────────────────────────────────────────────────────────────────────
	// API v1 - Insights
	// ─────────────────────────────────────────────────────────────────────────
	mux.HandleFunc("GET /v1/users/{id}/insights", s.handleGetInsights)
	mux.HandleFunc("POST /v1/users/{id}/insights/refresh", s.handleRefreshInsights)

	// ─────────────────────────────────────────────────────────────────────────
	// API v1 - Goals
	// ─────────────────────────────────────────────────────────────────────────
	mux.HandleFunc("POST /v1/users/{id}/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /v1/users/{id}/goals", s.handleListGoals)
	mux.HandleFunc("GET /v1/users/{id}/goals/{goalID}", s.handleGetGoal)
	mux.HandleFunc("PATCH /v1/users/{id}/goals/{goalID}/progress", s.handleUpdateGoalProgress)
	mux.HandleFunc("POST /v1/users/{id}/goals/{goalID}/milestones", s.handleCompleteGoalMilestone)
	mux.HandleFunc("POST /v1/users/{id}/goals/{goalID}/complete", s.handleCompleteGoal)
	mux.HandleFunc("POST /v1/users/{id}/goals/{goalID}/abandon", s.handleAbandonGoal)
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

type middleware func(http.Handler) http.Handler

// wrap applies the middleware stack outermost-first.
func (s *Server) wrap(h http.Handler) http.Handler {
	stack := []middleware{}
	if s.limiter != nil {
		stack = append(stack, s.withRateLimit)
	}
	if s.config.EnableCORS {
		stack = append(stack, s.withCORS)
	}
	stack = append(stack, s.withRecovery, s.withLogging, s.withRequestID)

	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.Duration("duration", time.Since(start)),
			logger.String("ip", clientIP(r)),
			logger.String("request_id", requestIDFrom(r.Context())),
		)
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					logger.Any("panic", rec),
					logger.String("path", r.URL.Path),
					logger.String("request_id", requestIDFrom(r.Context())),
					logger.String("stack", string(debug.Stack())),
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			h.Set("Access-Control-Max-Age", "86400")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start runs the server and blocks until Shutdown or a listener error.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("http: server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http: serve failed: %w", err)
	}
	return nil
}

// StartAsync runs Start on its own goroutine and reports its result.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
		close(errCh)
	}()
	return errCh
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	running := s.running
	s.running = false
	s.mu.Unlock()

	if !running {
		return nil
	}
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the fully wrapped handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSES
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse is the envelope every endpoint responds with.
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body := JSONResponse{Success: status < 300, Data: data}
	writeEnvelope(w, status, body)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	body := JSONResponse{Error: &APIError{Code: code, Message: message}}
	writeEnvelope(w, status, body)
}

func writeEnvelope(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const requestIDKey contextKey = "request_id"

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// clientIP resolves the caller address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER
// ══════════════════════════════════════════════════════════════════════════════

// ipLimiter counts requests per client in fixed windows.
type ipLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	opened time.Time
	limit  int
	window time.Duration
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		counts: make(map[string]int),
		opened: time.Now(),
		limit:  limit,
		window: window,
	}
}

func (l *ipLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.opened) >= l.window {
		l.counts = make(map[string]int)
		l.opened = now
	}

	if l.counts[key] >= l.limit {
		return false
	}
	l.counts[key]++
	return true
}
