package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/juberthrdzz/vapi-voice-agent/internal/repository"
	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
)

// Voice assistant actions returned to the calling platform. The platform
// maps them onto its own dialog steps.
const (
	ActionShowMenu       = "show_menu"
	ActionRequestDetails = "request_item_details"
	ActionStartOrder     = "start_order"
	ActionGeneralHelp    = "general_help"
)

// QueryResult is the routing hint for a free-form voice query.
type QueryResult struct {
	Response  string `json:"response"`
	Action    string `json:"action"`
	SessionID string `json:"session_id"`
}

// VoiceService classifies free-form customer utterances so the voice
// platform knows which tool to call next.
type VoiceService struct {
	sessions repository.SessionRepository
	logger   *slog.Logger
}

func NewVoiceService(sessions repository.SessionRepository, logger *slog.Logger) *VoiceService {
	return &VoiceService{sessions: sessions, logger: logger}
}

// ProcessQuery records the utterance for the session and routes it with a
// keyword heuristic. Persisting the query is best effort; classification
// still answers when the session store is down.
func (s *VoiceService) ProcessQuery(ctx context.Context, sessionID, query string) (*QueryResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidInput("query is required")
	}

	if err := s.sessions.SaveLastQuery(ctx, sessionID, query); err != nil {
		s.logger.WarnContext(ctx, "failed to record voice query",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}

	response, action := classify(query)
	return &QueryResult{
		Response:  response,
		Action:    action,
		SessionID: sessionID,
	}, nil
}

// LastQuery returns what the caller said most recently in this session.
func (s *VoiceService) LastQuery(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", apperrors.InvalidInput("session_id is required")
	}
	return s.sessions.LastQuery(ctx, sessionID)
}

func classify(query string) (response, action string) {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "menu"):
		return "I can show you our menu. Which category are you interested in?", ActionShowMenu
	case strings.Contains(q, "price") || strings.Contains(q, "cost") || strings.Contains(q, "how much"):
		return "I can look that up. Which item would you like the price for?", ActionRequestDetails
	case strings.Contains(q, "order"):
		return "Great, let's get your order started. What would you like?", ActionStartOrder
	default:
		return "I can help you browse the menu, check prices or place an order. What would you like to do?", ActionGeneralHelp
	}
}
