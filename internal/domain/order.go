package domain

import "time"

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order represents a customer order.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"items"`
	TotalCents  int64       `json:"total_cents"`
	Currency    string      `json:"currency"`
	ShipName    string      `json:"ship_name,omitempty"`
	ShipAddress string      `json:"ship_address,omitempty"`
	ShipCity    string      `json:"ship_city,omitempty"`
	ShipCountry string      `json:"ship_country,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is a single line on an order.
type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// StatusHistoryEntry is one row of the append-only order audit trail.
// FromStatus is nil for the entry recorded at order creation. ChangedBy is
// the acting admin's id, empty for user-initiated cancellation and creation.
type StatusHistoryEntry struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the status permits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// CanTransitionTo checks if the order can move to the target status. Any
// non-terminal order may move to any other valid status; delivered and
// cancelled orders are frozen.
func (o *Order) CanTransitionTo(target string) bool {
	if !IsValidStatus(target) {
		return false
	}
	if IsTerminalStatus(o.Status) {
		return false
	}
	return target != o.Status
}

// IsTerminal reports whether the order is in a terminal status.
func (o *Order) IsTerminal() bool {
	return IsTerminalStatus(o.Status)
}
