package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
)

// HealthChecker reports whether the remote ledger is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RPCObserver records JSON-RPC calls.
type RPCObserver interface {
	ObserveRPC(method, status string)
}

// Handler routes requests to the fork store.
type Handler struct {
	forks   *service.ForkService
	remote  HealthChecker
	rpcObs  RPCObserver
	logger  logger.Logger
	mux     *http.ServeMux
	methods map[string]rpcMethod
}

// Option configures a Handler.
type Option func(*Handler)

// WithRemoteHealth makes /ready probe the remote ledger.
func WithRemoteHealth(c HealthChecker) Option {
	return func(h *Handler) {
		h.remote = c
	}
}

// WithRPCObserver reports JSON-RPC calls to o.
func WithRPCObserver(o RPCObserver) Option {
	return func(h *Handler) {
		if o != nil {
			h.rpcObs = o
		}
	}
}

// New creates a new Handler for forks.
func New(forks *service.ForkService, log logger.Logger, opts ...Option) *Handler {
	if log == nil {
		log = logger.Default()
	}
	h := &Handler{
		forks:  forks,
		rpcObs: nopObserver{},
		logger: log,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registerMethods()
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Routes lists the patterns served by the handler.
var Routes = []string{
	"GET /health",
	"GET /ready",
	"POST /fork/create",
	"GET /forks",
	"GET /fork/{id}",
	"POST /fork/{id}/revoke",
	"POST /fork/{id}/rpc",
	"GET /fork/{id}/transactions",
	"GET /admin/v1/status/summary",
	"POST /admin/v1/gc/trigger",
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Fork endpoints
	h.mux.HandleFunc("POST /fork/create", h.handleCreateFork)
	h.mux.HandleFunc("GET /forks", h.handleListForks)
	h.mux.HandleFunc("GET /fork/{id}", h.handleGetFork)
	h.mux.HandleFunc("POST /fork/{id}/revoke", h.handleRevokeFork)
	h.mux.HandleFunc("POST /fork/{id}/rpc", h.handleRPC)
	h.mux.HandleFunc("GET /fork/{id}/transactions", h.handleTransactions)

	// Admin endpoints
	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("POST /admin/v1/gc/trigger", h.handleGCTrigger)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// getRequestID returns the id assigned by the RequestID middleware, falling
// back to the inbound header.
func getRequestID(r *http.Request) string {
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		h.writeError(w, r, errorCodeToHTTPStatus(de.Code), de.Code, de.Message, de.Details)
		return
	}

	h.logger.WithContext(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case code == domain.ErrFetchFailed.Code:
		return http.StatusBadGateway
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4000"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4220"):
		return http.StatusUnprocessableEntity
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "FM-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type nopObserver struct{}

func (nopObserver) ObserveRPC(string, string) {}
