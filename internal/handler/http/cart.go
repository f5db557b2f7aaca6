package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/juberthrdzz/vapi-voice-agent/internal/service"
	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/httputil"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/logger"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// Quantity zero means "not provided" and defaults to one, which is what a
// voice platform sends when the caller names an item without a count.
type AddItemRequest struct {
	SessionID       string `json:"session_id" validate:"required"`
	ItemID          string `json:"item_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"gte=0,lte=100"`
	SpecialRequests string `json:"special_requests" validate:"max=500"`
}

// RemoveItemRequest is the JSON request body for removing an item.
type RemoveItemRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ItemID    string `json:"item_id" validate:"required"`
}

// CheckoutRequest is the JSON request body for confirming an order.
type CheckoutRequest struct {
	CustomerName        string `json:"customer_name" validate:"required,min=1,max=200"`
	CustomerPhone       string `json:"customer_phone" validate:"required,min=7,max=20"`
	SpecialInstructions string `json:"special_instructions" validate:"max=500"`
}

// --- Handlers ---

// AddItem handles POST /cart/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := logger.WithSessionID(r.Context(), req.SessionID)
	summary, err := h.service.AddItem(ctx, req.SessionID, req.ItemID, req.Quantity, req.SpecialRequests)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// RemoveItem handles POST /cart/remove
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req RemoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ctx := logger.WithSessionID(r.Context(), req.SessionID)
	summary, err := h.service.RemoveItem(ctx, req.SessionID, req.ItemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// GetCart handles GET /cart/{sessionID}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ctx := logger.WithSessionID(r.Context(), sessionID)
	summary, err := h.service.GetCart(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// Checkout handles POST /cart/{sessionID}/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ctx := logger.WithSessionID(r.Context(), sessionID)
	result, err := h.service.Checkout(ctx, sessionID, req.CustomerName, req.CustomerPhone, req.SpecialInstructions)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
