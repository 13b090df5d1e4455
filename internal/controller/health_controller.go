package controller

import (
	"net/http"
)

// ReadinessCheck reports why the service cannot take traffic, or nil.
type ReadinessCheck func() error

type HealthController struct {
	provider string
	ready    ReadinessCheck
}

func NewHealthController(provider string, ready ReadinessCheck) *HealthController {
	return &HealthController{provider: provider, ready: ready}
}

func (h *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Provider: h.provider})
}

func (h *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "alive"})
}

func (h *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "not ready",
				Provider: h.provider,
				Reason:   err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ready", Provider: h.provider})
}
