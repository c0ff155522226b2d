package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether the database and the identity provider are reachable.
type HealthChecker struct {
	db         DBPinger
	issuerURL  string
	httpClient *http.Client
	log        *slog.Logger
}

// NewHealthChecker builds the checker. An empty issuerURL skips the identity provider probe.
func NewHealthChecker(db DBPinger, issuerURL string, httpClient *http.Client, log *slog.Logger) *HealthChecker {
	return &HealthChecker{
		db:         db,
		issuerURL:  issuerURL,
		httpClient: httpClient,
		log:        log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.db.Ping(req.Context()); err != nil {
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: DB ping", sl.Err(err))
	} else {
		status["database"] = "ok"
	}

	if h.issuerURL != "" {
		status["identity_provider"] = h.probeIssuer(req)
		if status["identity_provider"] != "ok" {
			overallStatus = http.StatusServiceUnavailable
		}
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", sl.Err(err))
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}

func (h *HealthChecker) probeIssuer(req *http.Request) string {
	probe, err := http.NewRequestWithContext(req.Context(), http.MethodHead, h.issuerURL, nil)
	if err != nil {
		h.log.WarnContext(req.Context(), "Health check failed: invalid issuer URL", "host", h.issuerURL, sl.Err(err))
		return "unreachable"
	}

	resp, err := h.httpClient.Do(probe)
	if err != nil {
		h.log.WarnContext(req.Context(), "Health check failed: identity provider unreachable",
			"host", h.issuerURL, sl.Err(err))
		return "unreachable"
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			h.log.WarnContext(req.Context(), "Failed to close response body", sl.Err(err))
		}
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		h.log.WarnContext(req.Context(), "Health check failed: identity provider returned error status",
			"host", h.issuerURL, "status_code", resp.StatusCode)
		return "degraded"
	}
	return "ok"
}
