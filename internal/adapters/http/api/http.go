// Package api declares HTTP contracts and route registration helpers.
// The API is read-mostly: boards and connector listings are served from
// published state; the only mutation is an on-demand board refresh.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/holoboard/holoboard/internal/domain/render"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Boards returns every published board, keyed by board id.
	Boards() map[string]render.Board

	// Board returns one published board.
	Board(id string) (render.Board, bool)

	// RefreshBoard rebuilds and republishes one board on demand.
	RefreshBoard(ctx context.Context, id string) (render.Board, error)

	// ListConnectors returns the names of available connectors.
	ListConnectors() []string

	// ListFields returns the field references one connector serves.
	ListFields(connector string) []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	boardsHandler     *BoardsHandler
	connectorsHandler *ConnectorsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		boardsHandler:     NewBoardsHandler(deps),
		connectorsHandler: NewConnectorsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/boards", MetricsMiddleware(s.boardsHandler.HandleListBoards, "boards"))
	mux.HandleFunc("/boards/", MetricsMiddleware(s.boardsHandler.HandleBoard, "board"))
	mux.HandleFunc("/connectors", MetricsMiddleware(s.connectorsHandler.HandleListConnectors, "connectors"))
	mux.HandleFunc("/connectors/", MetricsMiddleware(s.connectorsHandler.HandleListFields, "connector_fields"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
