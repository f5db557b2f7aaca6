// Package kitchen forwards confirmed orders to the restaurant's kitchen
// display system over a webhook. The receiving system predates this
// service and expects Spanish field names; do not rename them.
package kitchen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/juberthrdzz/vapi-voice-agent/internal/domain"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/httpclient"
)

// webhookPayload is the wire format the kitchen system consumes.
type webhookPayload struct {
	NombreCliente string        `json:"nombre_cliente"`
	Telefono      string        `json:"telefono"`
	TipoDePedido  string        `json:"tipo_de_pedido"`
	Platillos     []webhookDish `json:"platillos"`
	PrecioTotal   string        `json:"precio_total"`
	IDRestaurante string        `json:"id_restaurante"`
}

type webhookDish struct {
	Nombre   string `json:"nombre"`
	Cantidad int    `json:"cantidad"`
	Notas    string `json:"notas,omitempty"`
}

// Notifier posts confirmed orders to the kitchen webhook behind a circuit
// breaker so a dead kitchen endpoint cannot pile up blocked checkouts.
type Notifier struct {
	client       *httpclient.CircuitBreakerClient
	webhookURL   string
	restaurantID string
	orderType    string
	logger       *slog.Logger
}

// Config holds the kitchen webhook settings.
type Config struct {
	WebhookURL   string
	RestaurantID string
	OrderType    string
}

// NewNotifier builds a kitchen notifier. Returns nil when no webhook URL
// is configured; callers treat a nil notifier as "kitchen disabled".
func NewNotifier(cfg Config, client *httpclient.CircuitBreakerClient, logger *slog.Logger) *Notifier {
	if cfg.WebhookURL == "" {
		return nil
	}
	return &Notifier{
		client:       client,
		webhookURL:   cfg.WebhookURL,
		restaurantID: cfg.RestaurantID,
		orderType:    cfg.OrderType,
		logger:       logger,
	}
}

// NotifyOrder posts the order to the kitchen webhook. Any non-2xx reply
// is an error; the caller decides whether that fails the request.
func (n *Notifier) NotifyOrder(ctx context.Context, order *domain.Order) error {
	dishes := make([]webhookDish, len(order.Items))
	for i, item := range order.Items {
		dishes[i] = webhookDish{
			Nombre:   item.Name,
			Cantidad: item.Quantity,
			Notas:    item.SpecialRequests,
		}
	}

	payload := webhookPayload{
		NombreCliente: order.CustomerName,
		Telefono:      order.CustomerPhone,
		TipoDePedido:  n.orderType,
		Platillos:     dishes,
		PrecioTotal:   formatCents(order.TotalAmount),
		IDRestaurante: n.restaurantID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal kitchen payload: %w", err)
	}

	resp, err := n.client.Post(ctx, n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post kitchen webhook: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("kitchen webhook returned status %d", resp.StatusCode)
	}

	n.logger.InfoContext(ctx, "order forwarded to kitchen",
		slog.String("order_id", order.ID),
		slog.Int("status", resp.StatusCode),
	)

	return nil
}

// formatCents renders an integer cent amount as a decimal string, the
// format the kitchen system expects for precio_total.
func formatCents(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
