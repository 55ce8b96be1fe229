package estimator

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/ksingh-scogo/vramio/pkg/internal/utils"
	"github.com/ksingh-scogo/vramio/pkg/logging"
	"github.com/ksingh-scogo/vramio/pkg/metrics"
	"github.com/ksingh-scogo/vramio/pkg/middleware"
)

// HTTPHandler serves the estimation endpoint.
type HTTPHandler struct {
	// log is the associated logger.
	log logging.Logger
	// router is the HTTP request router.
	router *http.ServeMux
	// httpHandler is the HTTP request handler, which wraps router with
	// the server-level middleware.
	httpHandler http.Handler
	// lock is used to synchronize access to the handler's router.
	lock sync.RWMutex
	// estimator handles business logic for estimation requests.
	estimator *Estimator
}

// NewHTTPHandler creates a new estimation handler.
func NewHTTPHandler(log logging.Logger, estimator *Estimator, allowedOrigins []string) *HTTPHandler {
	h := &HTTPHandler{
		log:       log,
		router:    http.NewServeMux(),
		estimator: estimator,
	}

	// Register routes.
	h.router.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	for route, handler := range h.routeHandlers() {
		h.router.HandleFunc(route, handler)
	}

	h.RebuildRoutes(allowedOrigins)

	return h
}

// RebuildRoutes rewraps the router with middleware that depends on the
// allowed origins.
func (h *HTTPHandler) RebuildRoutes(allowedOrigins []string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.httpHandler = middleware.CorsMiddleware(allowedOrigins, h.router)
}

func (h *HTTPHandler) routeHandlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /{$}":   h.handleEstimate,
		"GET /model": h.handleEstimate,
	}
}

// ServeHTTP implements net/http.Handler.ServeHTTP.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.lock.RLock()
	handler := h.httpHandler
	h.lock.RUnlock()
	handler.ServeHTTP(w, r)
}

// handleEstimate handles GET / and GET /model requests.
func (h *HTTPHandler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	modelID := r.URL.Query().Get("hf_id")
	if modelID == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Usage: /model?hf_id=microsoft/phi-2",
		})
		metrics.ObserveRequest(http.StatusBadRequest, time.Since(started))
		return
	}

	report, err := h.estimator.Estimate(r.Context(), modelID, r.URL.Query().Get("revision"))
	if err != nil {
		h.log.WithError(err).Warnf("estimation failed for %q", utils.SanitizeForLog(modelID))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
		metrics.ObserveRequest(http.StatusInternalServerError, time.Since(started))
		return
	}

	h.writeJSON(w, http.StatusOK, report)
	metrics.ObserveRequest(http.StatusOK, time.Since(started))
}

// writeJSON writes a JSON response body. Write failures caused by the client
// hanging up are logged and ignored rather than surfaced.
func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		h.log.WithError(err).Error("failed to encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		if isClientDisconnect(err) {
			h.log.WithError(err).Debug("client disconnected during response write")
			return
		}
		h.log.WithError(err).Error("failed to write response")
	}
}

// isClientDisconnect reports whether a write error means the client reset or
// closed the connection.
func isClientDisconnect(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
