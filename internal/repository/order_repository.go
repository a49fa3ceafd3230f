package repository

import (
	"context"
	"errors"
	"fmt"

	"farmstand/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// IsUniqueViolation reports whether the error is a unique-constraint
// violation, i.e. a concurrent writer created the row first.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateCustomer inserts the checkout customer within the transaction.
func (r *orderRepository) CreateCustomer(ctx context.Context, tx pgx.Tx, customer *model.Customer) error {
	query := `
		INSERT INTO customers (id, email, first_name, last_name, phone, address_1, address_2, city, province, postal_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		customer.ID,
		customer.Email,
		customer.FirstName,
		customer.LastName,
		customer.Phone,
		customer.Address1,
		customer.Address2,
		customer.City,
		customer.Province,
		customer.PostalCode,
		customer.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer_id", customer.ID.String()).
			Msg("failed to create customer")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// CreateOrder inserts a new order within the provided transaction.
// The unique constraint on payment_intent_id enforces at-most-one order
// per payment identifier.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, payment_intent_id, status, payment_status,
			customer_id, delivery_method, pickup_location_id,
			subtotal, tax, shipping, total, woo_order_id, notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.PaymentIntentID,
		order.Status,
		order.PaymentStatus,
		order.CustomerID,
		order.DeliveryMethod,
		order.PickupLocationID,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Total,
		order.WooOrderID,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if !IsUniqueViolation(err) {
			r.logger.Error().
				Err(err).
				Str("order_number", order.OrderNumber).
				Msg("failed to create order")
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, name, price, quantity, tax, total, shipping_class, booking_date, booking_time, party_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
			item.Tax,
			item.Total,
			item.ShippingClass,
			item.BookingDate,
			item.BookingTime,
			item.PartySize,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Int64("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

const orderColumns = `
	id, order_number, payment_intent_id, status, payment_status,
	customer_id, delivery_method, pickup_location_id,
	subtotal, tax, shipping, total, woo_order_id, notes,
	created_at, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.PaymentIntentID,
		&order.Status,
		&order.PaymentStatus,
		&order.CustomerID,
		&order.DeliveryMethod,
		&order.PickupLocationID,
		&order.Subtotal,
		&order.Tax,
		&order.Shipping,
		&order.Total,
		&order.WooOrderID,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByPaymentIntentID retrieves the order owning a payment identifier.
func (r *orderRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, paymentIntentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// GetByNumberAndIntent retrieves the order matching both identifiers.
func (r *orderRepository) GetByNumberAndIntent(ctx context.Context, orderNumber, paymentIntentID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1 AND payment_intent_id = $2`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderNumber, paymentIntentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("order_number", orderNumber).
			Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// GetItems retrieves the line items of an order.
func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, price, quantity, tax, total, shipping_class, booking_date, booking_time, party_size
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.Tax,
			&item.Total,
			&item.ShippingClass,
			&item.BookingDate,
			&item.BookingTime,
			&item.PartySize,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// GetCustomer retrieves a customer by id.
func (r *orderRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := `
		SELECT id, email, first_name, last_name, phone, address_1, address_2, city, province, postal_code, created_at
		FROM customers
		WHERE id = $1
	`

	var customer model.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Email,
		&customer.FirstName,
		&customer.LastName,
		&customer.Phone,
		&customer.Address1,
		&customer.Address2,
		&customer.City,
		&customer.Province,
		&customer.PostalCode,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &customer, nil
}

// MarkTerminal moves a pending order to a terminal state. The WHERE
// guard on status makes the transition monotonic even under concurrent
// reconciliation attempts.
func (r *orderRepository) MarkTerminal(ctx context.Context, orderID uuid.UUID, status, paymentStatus string, wooOrderID *int64, note string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $2,
		    payment_status = $3,
		    woo_order_id = COALESCE($4, woo_order_id),
		    notes = CASE WHEN $5 = '' THEN notes
		                 WHEN notes = '' THEN $5
		                 ELSE notes || E'\n' || $5 END,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, orderID, status, paymentStatus, wooOrderID, note)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", status).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	updated := tag.RowsAffected() > 0
	if updated {
		r.logger.Info().
			Str("order_id", orderID.String()).
			Str("status", status).
			Str("payment_status", paymentStatus).
			Msg("order moved to terminal state")
	}

	return updated, nil
}

// RecordMirrorResult stores the upstream mirror outcome after the
// terminal transition has been claimed.
func (r *orderRepository) RecordMirrorResult(ctx context.Context, orderID uuid.UUID, wooOrderID *int64, note string) error {
	query := `
		UPDATE orders
		SET woo_order_id = COALESCE($2, woo_order_id),
		    notes = CASE WHEN $3 = '' THEN notes
		                 WHEN notes = '' THEN $3
		                 ELSE notes || E'\n' || $3 END,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, orderID, wooOrderID, note)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to record mirror result")
		return fmt.Errorf("failed to record mirror result: %w", err)
	}

	return nil
}
