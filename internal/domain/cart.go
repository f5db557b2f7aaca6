package domain

import "time"

// Line is one distinct menu item in a cart, with its quantity and notes.
// A cart holds at most one line per item_id; re-adding the same item merges
// into the existing line.
type Line struct {
	ItemID          string `json:"item_id"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// Cart is the mutable per-call shopping cart, keyed by the voice platform's
// session ID. Prices are never stored here: totals are resolved against the
// menu at read time, so a summary always reflects current menu prices.
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindLine returns the index of the line for the given item ID, or -1.
func (c *Cart) FindLine(itemID string) int {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// TotalQuantity returns the aggregate item count across all lines.
func (c *Cart) TotalQuantity() int {
	var total int
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CartSummary is the caller-facing view of a cart with menu prices resolved.
type CartSummary struct {
	SessionID   string        `json:"session_id"`
	Items       []SummaryLine `json:"items"`
	TotalItems  int           `json:"total_items"`
	TotalAmount int64         `json:"total_amount"`
}

// SummaryLine is one cart line with its current menu name and price attached.
// Price and LineTotal are in cents.
type SummaryLine struct {
	ItemID          string `json:"item_id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests,omitempty"`
	LineTotal       int64  `json:"line_total"`
}
