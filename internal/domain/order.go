package domain

import "time"

// Order status constants. Checkout always creates an order as confirmed;
// kitchen staff advance it from there.
const (
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order is the immutable record produced by checkout. Only Status changes
// after creation, and only along the transitions allowed by CanTransition.
type Order struct {
	ID                  string      `json:"order_id"`
	SessionID           string      `json:"session_id"`
	Items               []OrderItem `json:"items"`
	CustomerName        string      `json:"customer_name"`
	CustomerPhone       string      `json:"customer_phone"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	TotalAmount         int64       `json:"total_amount"`
	Status              string      `json:"status"`
	CreatedAt           time.Time   `json:"created_at"`
}

// OrderItem is a cart line snapshotted at checkout time, with the name and
// price (cents) that were current when the order was placed.
type OrderItem struct {
	ItemID          string `json:"item_id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// TotalAmountFromItems recomputes the order total from its items.
func (o *Order) TotalAmountFromItems() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// IsTerminal returns true when the order can no longer change status.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// ValidStatuses returns the set of recognized order statuses.
func ValidStatuses() []string {
	return []string{
		StatusConfirmed,
		StatusPreparing,
		StatusReady,
		StatusCompleted,
		StatusCancelled,
	}
}

// IsValidStatus reports whether the given status string is recognized.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// The happy path is confirmed -> preparing -> ready -> completed; cancelled
// is reachable from any non-terminal state.
func CanTransition(from, to string) bool {
	if to == StatusCancelled {
		return from == StatusConfirmed || from == StatusPreparing || from == StatusReady
	}

	switch from {
	case StatusConfirmed:
		return to == StatusPreparing
	case StatusPreparing:
		return to == StatusReady
	case StatusReady:
		return to == StatusCompleted
	default:
		return false
	}
}
