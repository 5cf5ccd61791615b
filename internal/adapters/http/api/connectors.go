// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// ConnectorsHandler handles connector listing requests.
type ConnectorsHandler struct {
	deps Dependencies
}

// NewConnectorsHandler creates a new connectors handler.
func NewConnectorsHandler(deps Dependencies) *ConnectorsHandler {
	return &ConnectorsHandler{deps: deps}
}

// HandleListConnectors handles GET /connectors requests.
func (h *ConnectorsHandler) HandleListConnectors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ListConnectors())
}

// HandleListFields handles GET /connectors/{name}/fields requests.
func (h *ConnectorsHandler) HandleListFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/connectors/")
	name, ok := strings.CutSuffix(path, "/fields")
	if !ok || name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	fields := h.deps.ListFields(name)
	if fields == nil {
		fields = []string{}
	}
	writeJSON(w, http.StatusOK, fields)
}
