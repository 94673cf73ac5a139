package handler

import (
	"context"
	"net/http"
	"time"

	"blog_api/internal/common"
	"blog_api/internal/platform/logging"
)

type IndexHandler struct {
	responder *common.Responder
}

func NewIndexHandler(responder *common.Responder) *IndexHandler {
	return &IndexHandler{responder: responder}
}

// Root answers GET / and points clients at the versioned API.
func (h *IndexHandler) Root(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, common.StatusResponse{
		Name:    h.responder.APIName,
		Status:  "OK",
		Code:    http.StatusOK,
		Message: "You must use /v1",
	})
}

func (h *IndexHandler) V1(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, common.StatusResponse{
		Name:   h.responder.APIName,
		Status: "OK",
		Code:   http.StatusOK,
	})
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks    map[string]Pinger
	responder *common.Responder
	logger    logging.Logger
}

func NewHealthHandler(checks map[string]Pinger, responder *common.Responder, logger logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{checks: active, responder: responder, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn(ctx, "health check failed", "check", name, "error", err)
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		common.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": status})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": status})
}
