package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	"github.com/trendzone/storefront/pkg/database"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order, its items, and the initial history row
// atomically. Every order starts its audit trail with a row recording the
// creation status.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, user_id, status, total_cents, currency, ship_name, ship_address, ship_city, ship_country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.TotalCents,
		o.Currency,
		o.ShipName,
		o.ShipAddress,
		o.ShipCity,
		o.ShipCountry,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price_cents)
		VALUES ($1, $2, $3, $4, $5)`

	for i := range o.Items {
		item := &o.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.OrderID = o.ID
		if _, err := tx.Exec(ctx, itemQuery, item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceCents); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	historyQuery := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, note, created_at)
		VALUES ($1, $2, NULL, $3, NULL, '', $4)`

	if _, err := tx.Exec(ctx, historyQuery, uuid.New().String(), o.ID, o.Status, o.CreatedAt); err != nil {
		return fmt.Errorf("insert initial status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, status, total_cents, currency, ship_name, ship_address, ship_city, ship_country, created_at, updated_at
		FROM orders
		WHERE id = $1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalCents,
		&o.Currency,
		&o.ShipName,
		&o.ShipAddress,
		&o.ShipCity,
		&o.ShipCountry,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// ListByUserID returns the user's orders, newest first, without items.
func (r *OrderRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT id, user_id, status, total_cents, currency, ship_name, ship_address, ship_city, ship_country, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// List returns orders matching the filter, newest first, without items.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var (
		rows pgx.Rows
		err  error
	)
	if filter.Status != "" {
		query := `
			SELECT id, user_id, status, total_cents, currency, ship_name, ship_address, ship_city, ship_country, created_at, updated_at
			FROM orders
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		rows, err = r.pool.Query(ctx, query, filter.Status, limit, filter.Offset)
	} else {
		query := `
			SELECT id, user_id, status, total_cents, currency, ship_name, ship_address, ship_city, ship_country, created_at, updated_at
			FROM orders
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`
		rows, err = r.pool.Query(ctx, query, limit, filter.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// UpdateStatus atomically moves the order to toStatus and appends one history
// row. The status precondition in the UPDATE guards against concurrent
// transitions: if another request changed the status first, no row matches
// and the whole transaction rolls back with ErrConflict.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, fromStatus, toStatus, changedBy, note string) error {
	updateQuery := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	historyQuery := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", updateQuery)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		end(err)
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	ct, err := tx.Exec(ctx, updateQuery, toStatus, now, orderID, fromStatus)
	if err != nil {
		end(err)
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		err := apperrors.Conflict(fmt.Sprintf("order %s is no longer in status %q", orderID, fromStatus))
		end(err)
		return err
	}

	_, err = tx.Exec(ctx, historyQuery,
		uuid.New().String(),
		orderID,
		nullable(fromStatus),
		toStatus,
		nullable(changedBy),
		note,
		now,
	)
	if err != nil {
		end(err)
		return fmt.Errorf("insert status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		end(err)
		return fmt.Errorf("commit status update: %w", err)
	}

	end(nil)
	return nil
}

// ListHistory returns the order's full audit trail, oldest first. The trail
// is never paginated; it is the audit record.
func (r *OrderRepository) ListHistory(ctx context.Context, orderID string) ([]domain.StatusHistoryEntry, error) {
	query := `
		SELECT id, order_id, from_status, to_status, changed_by, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		var (
			e         domain.StatusHistoryEntry
			changedBy *string
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &changedBy, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		if changedBy != nil {
			e.ChangedBy = *changedBy
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}

	return entries, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price_cents
		FROM order_items
		WHERE order_id = $1`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.TotalCents,
			&o.Currency,
			&o.ShipName,
			&o.ShipAddress,
			&o.ShipCity,
			&o.ShipCountry,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}
