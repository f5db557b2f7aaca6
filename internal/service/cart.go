package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juberthrdzz/vapi-voice-agent/internal/domain"
	"github.com/juberthrdzz/vapi-voice-agent/internal/event"
	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	"github.com/juberthrdzz/vapi-voice-agent/internal/repository"
	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
)

// EstimatedPrepTime is quoted back to the caller on every confirmed order.
const EstimatedPrepTime = "25-30 minutes"

// KitchenNotifier forwards a confirmed order to the kitchen system.
type KitchenNotifier interface {
	NotifyOrder(ctx context.Context, order *domain.Order) error
}

// CheckoutResult is what the caller reads back to the customer.
type CheckoutResult struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	TotalAmount   int64  `json:"total_amount"`
	EstimatedTime string `json:"estimated_time"`
}

// CartService owns the session cart lifecycle: add, remove, summarize
// and convert to an order at checkout.
type CartService struct {
	menu        *menu.Menu
	carts       repository.CartRepository
	orders      repository.OrderRepository
	producer    *event.Producer
	kitchen     KitchenNotifier
	logger      *slog.Logger
	maxQuantity int
}

func NewCartService(
	m *menu.Menu,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	producer *event.Producer,
	kitchen KitchenNotifier,
	logger *slog.Logger,
	maxQuantity int,
) *CartService {
	return &CartService{
		menu:        m,
		carts:       carts,
		orders:      orders,
		producer:    producer,
		kitchen:     kitchen,
		logger:      logger,
		maxQuantity: maxQuantity,
	}
}

// AddItem puts quantity units of a menu item into the session cart,
// merging with an existing line for the same item. The returned summary
// reflects current menu prices.
func (s *CartService) AddItem(ctx context.Context, sessionID, itemID string, quantity int, specialRequests string) (*domain.CartSummary, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	item, err := s.menu.Find(itemID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		now := time.Now().UTC()
		cart = &domain.Cart{SessionID: sessionID, CreatedAt: now, UpdatedAt: now}
	}

	if cart.TotalQuantity()+quantity > s.maxQuantity {
		return nil, apperrors.LimitExceeded("QUANTITY_LIMIT_EXCEEDED",
			fmt.Sprintf("cart cannot exceed %d items", s.maxQuantity))
	}

	if i := cart.FindLine(item.ID); i >= 0 {
		cart.Lines[i].Quantity += quantity
		if specialRequests != "" {
			cart.Lines[i].SpecialRequests = specialRequests
		}
	} else {
		cart.Lines = append(cart.Lines, domain.Line{
			ItemID:          item.ID,
			Quantity:        quantity,
			SpecialRequests: specialRequests,
		})
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", item.ID),
		slog.Int("quantity", quantity),
	)

	return s.summarize(cart)
}

// RemoveItem drops the whole line for an item. Quantity adjustments are
// done by removing and re-adding.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.CartSummary, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("ITEM_NOT_IN_CART", "item is not in the cart")
		}
		return nil, err
	}

	idx := cart.FindLine(itemID)
	if idx < 0 {
		return nil, apperrors.NotFound("ITEM_NOT_IN_CART", "item is not in the cart")
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	cart.UpdatedAt = time.Now().UTC()

	if cart.IsEmpty() {
		if err := s.carts.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return emptySummary(sessionID), nil
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", itemID),
	)

	return s.summarize(cart)
}

// GetCart returns the priced summary for a session. An unknown session
// is an empty cart, not an error.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.CartSummary, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return emptySummary(sessionID), nil
		}
		return nil, err
	}
	return s.summarize(cart)
}

// Checkout freezes the cart into an immutable order, clears the cart and
// notifies downstream systems. The order is persisted before the cart is
// cleared so a failed cleanup can never lose a confirmed order.
func (s *CartService) Checkout(ctx context.Context, sessionID, customerName, customerPhone, specialInstructions string) (*CheckoutResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, apperrors.InvalidInput("customer_name is required")
	}
	if strings.TrimSpace(customerPhone) == "" {
		return nil, apperrors.InvalidInput("customer_phone is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.Conflict("EMPTY_CART", "cart has no items to check out")
	}

	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		item, err := s.menu.Find(line.ItemID)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ItemID:          item.ID,
			Name:            item.Name,
			Price:           item.Price,
			Quantity:        line.Quantity,
			SpecialRequests: line.SpecialRequests,
		})
	}

	order := &domain.Order{
		ID:                  newOrderID(),
		SessionID:           sessionID,
		Items:               items,
		CustomerName:        strings.TrimSpace(customerName),
		CustomerPhone:       strings.TrimSpace(customerPhone),
		SpecialInstructions: specialInstructions,
		Status:              domain.StatusConfirmed,
		CreatedAt:           time.Now().UTC(),
	}
	order.TotalAmount = order.TotalAmountFromItems()

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	// Cart cleanup is best effort: the order already exists, a leftover
	// cart just expires on its own TTL.
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()))
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	if s.kitchen != nil {
		if err := s.kitchen.NotifyOrder(ctx, order); err != nil {
			s.logger.WarnContext(ctx, "kitchen notification failed",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("session_id", sessionID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return &CheckoutResult{
		OrderID:       order.ID,
		Status:        order.Status,
		TotalAmount:   order.TotalAmount,
		EstimatedTime: EstimatedPrepTime,
	}, nil
}

// GetOrder fetches a confirmed order by id.
func (s *CartService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperrors.InvalidInput("order_id is required")
	}
	return s.orders.Get(ctx, orderID)
}

// UpdateOrderStatus advances an order through its lifecycle.
func (s *CartService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown status %q", status))
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if !domain.CanTransition(previous, status) {
		return nil, apperrors.Conflict("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("cannot move order from %s to %s", previous, status))
	}

	order.Status = status
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	if err := s.producer.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("previous_status", previous),
		slog.String("new_status", status),
	)

	return order, nil
}

func (s *CartService) summarize(cart *domain.Cart) (*domain.CartSummary, error) {
	summary := emptySummary(cart.SessionID)
	for _, line := range cart.Lines {
		item, err := s.menu.Find(line.ItemID)
		if err != nil {
			// Menu edits between add and read; skip lines that no longer
			// resolve rather than failing the whole summary.
			s.logger.Warn("cart references unknown menu item",
				slog.String("session_id", cart.SessionID),
				slog.String("item_id", line.ItemID))
			continue
		}
		lineTotal := item.Price * int64(line.Quantity)
		summary.Items = append(summary.Items, domain.SummaryLine{
			ItemID:          item.ID,
			Name:            item.Name,
			Price:           item.Price,
			Quantity:        line.Quantity,
			SpecialRequests: line.SpecialRequests,
			LineTotal:       lineTotal,
		})
		summary.TotalItems += line.Quantity
		summary.TotalAmount += lineTotal
	}
	return summary, nil
}

func emptySummary(sessionID string) *domain.CartSummary {
	return &domain.CartSummary{
		SessionID: sessionID,
		Items:     []domain.SummaryLine{},
	}
}

func newOrderID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("order_%d_%s", time.Now().Unix(), suffix)
}
