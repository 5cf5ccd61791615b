// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// BoardsHandler handles board requests.
type BoardsHandler struct {
	deps Dependencies
}

// NewBoardsHandler creates a new boards handler.
func NewBoardsHandler(deps Dependencies) *BoardsHandler {
	return &BoardsHandler{deps: deps}
}

// HandleListBoards handles GET /boards requests.
func (h *BoardsHandler) HandleListBoards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Boards())
}

// HandleBoard handles GET /boards/{id} and POST /boards/{id}/refresh.
func (h *BoardsHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/boards/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if id, ok := strings.CutSuffix(path, "/refresh"); ok {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		board, err := h.deps.RefreshBoard(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found", ErrBoardNotFound)
			return
		}
		writeJSON(w, http.StatusOK, board)
		return
	}

	if r.Method != http.MethodGet || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}
	board, ok := h.deps.Board(path)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrBoardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
