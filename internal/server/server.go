package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/primeboard/primeboard/internal/auth"
	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/ratelimit"
	"github.com/primeboard/primeboard/internal/service/ingest"
	"github.com/primeboard/primeboard/internal/service/rank"
	"github.com/primeboard/primeboard/internal/service/recompute"
	"github.com/primeboard/primeboard/internal/storage"
)

// Server is the HTTP server for the leaderboard API.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// ServerConfig holds everything needed to construct a Server.
type ServerConfig struct {
	DB        *storage.DB
	JWTMgr    *auth.JWTManager
	IngestSvc *ingest.Service
	RankSvc   *rank.Service
	Builder   *recompute.Builder
	Logger    *slog.Logger

	// Limiter is optional; nil disables rate limiting.
	Limiter ratelimit.Limiter
	// MCPServer is optional; nil leaves /mcp unmounted.
	MCPServer *mcpserver.MCPServer

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxRequestBodyBytes int64
	Version             string
}

// New creates a Server with all routes and middleware wired.
func New(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := NewHandlers(HandlersDeps{
		DB:                  cfg.DB,
		JWTMgr:              cfg.JWTMgr,
		IngestSvc:           cfg.IngestSvc,
		RankSvc:             cfg.RankSvc,
		Builder:             cfg.Builder,
		Logger:              logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Rate-limit buckets: token exchange keys by client IP (no identity
	// yet); ingest and queries key by the authenticated agent, admins
	// exempt.
	reqID := func(r *http.Request) string { return RequestIDFromContext(r.Context()) }
	authRL := ratelimit.Middleware(cfg.Limiter, "auth", ratelimit.IPKeyFunc, reqID)
	ingestRL := ratelimit.Middleware(cfg.Limiter, "ingest", claimsKeyFunc, reqID)
	queryRL := ratelimit.Middleware(cfg.Limiter, "query", claimsKeyFunc, reqID)

	readRole := requireRole(model.RoleReader)
	agentRole := requireRole(model.RoleAgent)
	adminRole := requireRole(model.RoleAdmin)

	mux := http.NewServeMux()
	mux.Handle("GET /health", http.HandlerFunc(h.HandleHealth))
	mux.Handle("POST /auth/token", authRL(http.HandlerFunc(h.HandleAuthToken)))

	mux.Handle("POST /v1/submissions", agentRole(ingestRL(http.HandlerFunc(h.HandleSubmit))))
	mux.Handle("GET /v1/leaderboard", readRole(queryRL(http.HandlerFunc(h.HandleLeaderboard))))
	mux.Handle("GET /v1/agents/{name}/rank", readRole(queryRL(http.HandlerFunc(h.HandleAgentRank))))
	mux.Handle("GET /v1/agents/{name}/stats", readRole(queryRL(http.HandlerFunc(h.HandleAgentStats))))
	mux.Handle("GET /v1/boards/{metric}/{faction}", readRole(queryRL(http.HandlerFunc(h.HandleBoard))))

	mux.Handle("POST /v1/recompute", adminRole(http.HandlerFunc(h.HandleRecompute)))
	mux.Handle("POST /v1/apikeys", adminRole(http.HandlerFunc(h.HandleCreateAPIKey)))
	mux.Handle("DELETE /v1/apikeys/{id}", adminRole(http.HandlerFunc(h.HandleRevokeAPIKey)))

	if cfg.MCPServer != nil {
		streamable := mcpserver.NewStreamableHTTPServer(cfg.MCPServer)
		mux.Handle("/mcp", readRole(streamable))
	}

	// Middleware chain, outermost first: request ID, security headers,
	// tracing, logging, auth, recovery.
	var handler http.Handler = mux
	handler = recoveryMiddleware(logger, handler)
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  logger,
	}
}

// claimsKeyFunc keys rate limiting by the authenticated agent name. Admins
// are exempt; requests without claims fall through unlimited because auth
// already rejected them.
func claimsKeyFunc(r *http.Request) string {
	claims := ClaimsFromContext(r.Context())
	if claims == nil || claims.Role == model.RoleAdmin {
		return ""
	}
	return "key:" + claims.Subject
}

// Handler returns the fully wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for HTTP requests. Blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("server: listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	return s.httpServer.Shutdown(ctx)
}
