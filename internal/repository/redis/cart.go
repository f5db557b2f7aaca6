package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/juberthrdzz/vapi-voice-agent/internal/domain"
	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
)

const cartKeyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis. Carts are
// stored as JSON under cart:<session_id> with a sliding TTL: every Save
// refreshes the expiry window, so abandoned carts age out on their own.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart by session ID.
func (r *CartRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	key := cartKeyPrefix + sessionID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("CART_NOT_FOUND",
				fmt.Sprintf("no cart for session %q", sessionID))
		}
		return nil, apperrors.Unavailable("cart store: get", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Save persists a cart, refreshing its expiry window.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	key := cartKeyPrefix + cart.SessionID

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return apperrors.Unavailable("cart store: set", err)
	}

	return nil
}

// Delete removes the cart for a session.
func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	key := cartKeyPrefix + sessionID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return apperrors.Unavailable("cart store: del", err)
	}

	return nil
}
