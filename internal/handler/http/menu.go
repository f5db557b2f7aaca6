package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/httputil"
)

// MenuHandler handles HTTP requests for menu endpoints.
type MenuHandler struct {
	menu   *menu.Menu
	logger *slog.Logger
}

// NewMenuHandler creates a new menu HTTP handler.
func NewMenuHandler(m *menu.Menu, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		menu:   m,
		logger: logger,
	}
}

// GetMenu handles GET /menu
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"categories": h.menu.Categories(),
		"menu":       h.menu.ByCategory(),
	}})
}

// GetCategory handles GET /menu/{category}
func (h *MenuHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	items, err := h.menu.Items(category)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"category": category,
		"items":    items,
	}})
}
