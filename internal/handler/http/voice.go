package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/juberthrdzz/vapi-voice-agent/internal/service"
	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/httputil"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/logger"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/validator"
)

// VoiceHandler handles HTTP requests for the voice query endpoint.
type VoiceHandler struct {
	service *service.VoiceService
	logger  *slog.Logger
}

// NewVoiceHandler creates a new voice HTTP handler.
func NewVoiceHandler(svc *service.VoiceService, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{
		service: svc,
		logger:  logger,
	}
}

// QueryRequest is the JSON request body for a free-form voice query.
type QueryRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Query     string `json:"query" validate:"required,min=1,max=1000"`
}

// ProcessQuery handles POST /voice/query
func (h *VoiceHandler) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ctx := logger.WithSessionID(r.Context(), req.SessionID)
	result, err := h.service.ProcessQuery(ctx, req.SessionID, req.Query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
