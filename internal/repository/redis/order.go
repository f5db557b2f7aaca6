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

const orderKeyPrefix = "order:"

// OrderRepository implements repository.OrderRepository using Redis. Orders
// are stored as JSON under order:<order_id> with a long TTL; expiry is the
// only garbage collection, nothing ever deletes an order explicitly.
type OrderRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOrderRepository creates a new Redis-backed order repository.
func NewOrderRepository(client *redis.Client, ttl time.Duration) *OrderRepository {
	return &OrderRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves an order by ID.
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	key := orderKeyPrefix + orderID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("ORDER_NOT_FOUND",
				fmt.Sprintf("order %q not found", orderID))
		}
		return nil, apperrors.Unavailable("order store: get", err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}

	return &order, nil
}

// Save persists an order with the configured expiry.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	key := orderKeyPrefix + order.ID

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return apperrors.Unavailable("order store: set", err)
	}

	return nil
}
