package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juberthrdzz/vapi-voice-agent/internal/domain"
	pkgkafka "github.com/juberthrdzz/vapi-voice-agent/pkg/kafka"
)

// Kafka topic constants for restaurant domain events.
const (
	TopicCartUpdated        = "restaurant.cart.updated"
	TopicCartCleared        = "restaurant.cart.cleared"
	TopicOrderCreated       = "restaurant.order.created"
	TopicOrderStatusChanged = "restaurant.order.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from this service.
const SourceVoiceAgent = "voice-agent"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Items     []CartLineData `json:"items"`
	ItemCount int            `json:"item_count"`
}

// CartLineData is the line payload within cart events.
type CartLineData struct {
	ItemID          string `json:"item_id"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID       string          `json:"order_id"`
	SessionID     string          `json:"session_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Items         []OrderItemData `json:"items"`
	TotalAmount   int64           `json:"total_amount"`
	Status        string          `json:"status"`
}

// OrderItemData is the item payload within order events.
type OrderItemData struct {
	ItemID          string `json:"item_id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID        string `json:"order_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// Producer publishes restaurant domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the voice agent service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	lines := make([]CartLineData, len(cart.Lines))
	for i, line := range cart.Lines {
		lines[i] = CartLineData{
			ItemID:          line.ItemID,
			Quantity:        line.Quantity,
			SpecialRequests: line.SpecialRequests,
		}
	}

	data := CartUpdatedData{
		SessionID: cart.SessionID,
		Items:     lines,
		ItemCount: cart.TotalQuantity(),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.SessionID, AggregateTypeCart, SourceVoiceAgent, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", cart.SessionID),
		slog.Int("item_count", cart.TotalQuantity()),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	data := CartClearedData{SessionID: sessionID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, sessionID, AggregateTypeCart, SourceVoiceAgent, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
	)

	return nil
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ItemID:          item.ItemID,
			Name:            item.Name,
			Price:           item.Price,
			Quantity:        item.Quantity,
			SpecialRequests: item.SpecialRequests,
		}
	}

	data := OrderCreatedData{
		OrderID:       order.ID,
		SessionID:     order.SessionID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Items:         items,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceVoiceAgent, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, previous string) error {
	data := OrderStatusChangedData{
		OrderID:        order.ID,
		PreviousStatus: previous,
		NewStatus:      order.Status,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, order.ID, AggregateTypeOrder, SourceVoiceAgent, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", order.ID),
		slog.String("previous_status", previous),
		slog.String("new_status", order.Status),
	)

	return nil
}
