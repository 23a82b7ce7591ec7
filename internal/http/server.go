package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
)

// Ledger is the transaction surface the handlers need.
type Ledger interface {
	Add(ctx context.Context, ownerID int64, tx core.Transaction) (int64, error)
	Edit(ctx context.Context, ownerID, id int64, tx core.Transaction) error
	Delete(ctx context.Context, ownerID, id int64) error
	ListAll(ctx context.Context, ownerID int64) ([]core.Transaction, error)
	Summarize(ctx context.Context, ownerID int64, p core.Period) (core.Summary, error)
}

// Authenticator covers account and session management.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (core.Owner, error)
	Login(ctx context.Context, username, password string) (core.Owner, error)
	StartSession(ctx context.Context, owner core.Owner) (string, error)
	ResolveSession(ctx context.Context, token string) (int64, error)
	EndSession(ctx context.Context, token string)
}

// ExportQueue publishes asynchronous export requests. Nil when the broker
// is not configured.
type ExportQueue interface {
	PublishExportRequest(ctx context.Context, ownerID int64) error
}

type Server struct {
	http.Server
	ledger      Ledger
	auth        Authenticator
	exportQueue ExportQueue
	rateLimiter *rateLimiter

	// Summaries are cached per owner and period; any write for an owner
	// drops every cached period for that owner.
	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, auth Authenticator, queue ExportQueue, ratePerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:       ledger,
		auth:         auth,
		exportQueue:  queue,
		rateLimiter:  newRateLimiter(ratePerMinute),
		summaryCache: cache.NewLRUCache[core.Summary](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("POST /login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("POST /logout", s.withMiddleware(s.handleLogout))
	mux.HandleFunc("POST /theme", s.withMiddleware(s.handleTheme))

	mux.HandleFunc("GET /summary", s.withMiddleware(s.requireSession(s.handleSummary)))
	mux.HandleFunc("GET /transactions", s.withMiddleware(s.requireSession(s.handleListTransactions)))
	mux.HandleFunc("POST /transactions", s.withMiddleware(s.requireSession(s.handleAddTransaction)))
	mux.HandleFunc("POST /transactions/{id}", s.withMiddleware(s.requireSession(s.handleEditTransaction)))
	mux.HandleFunc("PUT /transactions/{id}", s.withMiddleware(s.requireSession(s.handleEditTransaction)))
	mux.HandleFunc("POST /transactions/{id}/delete", s.withMiddleware(s.requireSession(s.handleDeleteTransaction)))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.requireSession(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /export", s.withMiddleware(s.requireSession(s.handleExport)))
	mux.HandleFunc("POST /export/queue", s.withMiddleware(s.requireSession(s.handleQueueExport)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

type ctxKey string

const ownerIDKey ctxKey = "owner_id"

// requireSession resolves the session cookie into an owner ID and stores it
// on the request context. Missing or stale sessions get a 401.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil {
			writeError(w, core.ErrInvalidCredentials)
			return
		}
		ownerID, err := s.auth.ResolveSession(r.Context(), cookie.Value)
		if err != nil {
			writeError(w, core.ErrInvalidCredentials)
			return
		}
		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next(w, r.WithContext(ctx))
	}
}

func ownerFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(ownerIDKey).(int64)
	return id
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), ctxKey("request_id"), requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) summaryCacheKey(ownerID int64, p core.Period) string {
	return fmt.Sprintf("%d:%s", ownerID, p.Key())
}

// invalidateSummaries drops every cached summary for the owner. Writes touch
// the wallet balance, so period-scoped invalidation would not be enough.
func (s *Server) invalidateSummaries(ownerID int64) {
	s.summaryCache.DeletePrefix(fmt.Sprintf("%d:", ownerID))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
