package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avoca-hq/calls-service/pkg/coordinator/call"
	"github.com/avoca-hq/calls-service/pkg/coordinator/lifecycle"
	"github.com/avoca-hq/calls-service/pkg/coordinator/registry"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Lifecycle *lifecycle.Lifecycle
	Registry  *registry.Registry
	Table     *call.Table
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK          bool `json:"ok"`
		Draining    bool `json:"draining"`
		Connections int  `json:"connections"`
		ActiveCalls int  `json:"active_calls"`
	}

	draining := h.Lifecycle.IsDraining()
	status := http.StatusOK
	if draining {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(readyResp{
		OK:          !draining,
		Draining:    draining,
		Connections: h.Registry.Len(),
		ActiveCalls: h.Table.Len(),
	})
}
