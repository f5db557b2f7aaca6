package repository

import (
	"context"

	"github.com/juberthrdzz/vapi-voice-agent/internal/domain"
)

// CartRepository persists in-progress carts keyed by session ID.
type CartRepository interface {
	// Get retrieves the cart for a session. Returns an error wrapping
	// apperrors.ErrNotFound when no cart exists.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart, refreshing its expiry window.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for a session. Deleting an absent cart is
	// not an error.
	Delete(ctx context.Context, sessionID string) error
}

// OrderRepository persists completed orders keyed by order ID.
type OrderRepository interface {
	// Get retrieves an order. Returns an error wrapping
	// apperrors.ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, orderID string) (*domain.Order, error)

	// Save persists an order with the configured expiry.
	Save(ctx context.Context, order *domain.Order) error
}

// SessionRepository tracks per-call conversational state for the voice
// query heuristic.
type SessionRepository interface {
	// SaveLastQuery records the most recent raw query for a session.
	SaveLastQuery(ctx context.Context, sessionID, query string) error

	// LastQuery returns the most recent query for a session, or an error
	// wrapping apperrors.ErrNotFound.
	LastQuery(ctx context.Context, sessionID string) (string, error)
}
