package kitchen

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juberthrdzz/vapi-voice-agent/internal/domain"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/httpclient"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestNotifier(t *testing.T, url string) *Notifier {
	t.Helper()
	logger := newTestLogger()
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = 2 * time.Second
	clientCfg.MaxRetries = 0
	cb := httpclient.NewCircuitBreaker(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("kitchen-test"),
		logger,
	)
	return NewNotifier(Config{
		WebhookURL:   url,
		RestaurantID: "rest-42",
		OrderType:    "pickup",
	}, cb, logger)
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:            "order_1756500000_a1b2c3d4",
		SessionID:     "call-001",
		CustomerName:  "Juan Pérez",
		CustomerPhone: "555-1234",
		Items: []domain.OrderItem{
			{ItemID: "main1", Name: "Grilled Salmon", Price: 2499, Quantity: 2, SpecialRequests: "no capers"},
			{ItemID: "dess1", Name: "Tiramisu", Price: 899, Quantity: 1},
		},
		TotalAmount: 5897,
		Status:      domain.StatusConfirmed,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestNotifyOrder_PayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv.URL)
	require.NoError(t, n.NotifyOrder(context.Background(), sampleOrder()))

	assert.Equal(t, "Juan Pérez", got["nombre_cliente"])
	assert.Equal(t, "555-1234", got["telefono"])
	assert.Equal(t, "pickup", got["tipo_de_pedido"])
	assert.Equal(t, "58.97", got["precio_total"])
	assert.Equal(t, "rest-42", got["id_restaurante"])

	dishes, ok := got["platillos"].([]any)
	require.True(t, ok)
	require.Len(t, dishes, 2)
	first := dishes[0].(map[string]any)
	assert.Equal(t, "Grilled Salmon", first["nombre"])
	assert.Equal(t, float64(2), first["cantidad"])
	assert.Equal(t, "no capers", first["notas"])
}

func TestNotifyOrder_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv.URL)
	err := n.NotifyOrder(context.Background(), sampleOrder())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestNotifyOrder_Unreachable(t *testing.T) {
	n := newTestNotifier(t, "http://127.0.0.1:1/webhook")
	err := n.NotifyOrder(context.Background(), sampleOrder())
	require.Error(t, err)
}

func TestNewNotifier_DisabledWithoutURL(t *testing.T) {
	n := NewNotifier(Config{}, nil, newTestLogger())
	assert.Nil(t, n)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "58.97", formatCents(5897))
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "24.00", formatCents(2400))
	assert.Equal(t, "0.00", formatCents(0))
}
