package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements OrderStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const orderColumns = `id, number, user_id, status, payment_status, total_price, shipping_address, version, created_at`
const orderItemColumns = `id, order_id, product_id, shop_id, product_name, image_url,
	color, size, quantity, price_per_item, price, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &o.PaymentStatus, &o.TotalPrice,
		&o.ShippingAddress, &o.Version, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Order, []OrderItem, error) {
	var order *Order
	var orderItems []OrderItem

	// Use transaction to ensure atomicity and consistency
	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return ErrFailedToFindOrder
		}
		items, err := p.findItems(ctx, tx, id)
		if err != nil {
			return ErrFailedToFindOrderItems
		}
		order = o
		orderItems = items
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	return order, orderItems, nil
}

func (p *PgStore) findItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var it OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ShopID, &it.ProductName, &it.ImageURL,
			&it.Color, &it.Size, &it.Quantity, &it.PricePerItem, &it.Price, &it.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (p *PgStore) FindOrdersByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]Order, error) {
	// No need for transaction here as we are making just one query to fetch orders
	rows, err := p.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, ErrFailedToFindUserOrders
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, ErrFailedToFindUserOrders
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedToFindUserOrders
	}
	return orders, nil
}

func (p *PgStore) CreateOrder(ctx context.Context, params CreateOrderParams, items []CreateOrderItemParams) (*Order, []OrderItem, error) {
	var createdOrder *Order
	var createdItems []OrderItem

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx, `
			INSERT INTO orders (id, number, user_id, status, payment_status, total_price, shipping_address)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+orderColumns,
			uuid.New(), params.Number, params.UserID, params.Status, params.PaymentStatus,
			params.TotalPrice, params.ShippingAddress))
		if err != nil {
			return ErrCreateOrder
		}
		orderItems := make([]OrderItem, 0, len(items))
		for _, item := range items {
			var it OrderItem
			err := tx.QueryRow(ctx, `
				INSERT INTO order_items (id, order_id, product_id, shop_id, product_name, image_url,
					color, size, quantity, price_per_item, price)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				RETURNING `+orderItemColumns,
				uuid.New(), order.ID, item.ProductID, item.ShopID, item.ProductName, item.ImageURL,
				item.Color, item.Size, item.Quantity, item.PricePerItem, item.Price).
				Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ShopID, &it.ProductName, &it.ImageURL,
					&it.Color, &it.Size, &it.Quantity, &it.PricePerItem, &it.Price, &it.CreatedAt)
			if err != nil {
				return ErrCreateOrderItem
			}
			orderItems = append(orderItems, it)
		}
		createdOrder = order
		createdItems = orderItems
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	return createdOrder, createdItems, nil
}

func (p *PgStore) Update(ctx context.Context, params UpdateOrderParams) (*Order, error) {
	var order *Order

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, `
			UPDATE orders SET status = $3, version = version + 1
			WHERE id = $1 AND version = $2
			RETURNING `+orderColumns, params.ID, params.Version, params.Status))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Check if the order exists, or it's an optimistic lock error.
				if _, err := scanOrder(tx.QueryRow(ctx,
					`SELECT `+orderColumns+` FROM orders WHERE id = $1`, params.ID)); err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return ErrOrderNotFound
					}
					return ErrUpdateOrder
				}
				return ErrOptimisticLock
			}
			return ErrUpdateOrder
		}
		order = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w: %w", ErrTransactionRollback, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ErrTransactionCommit
	}
	return nil
}
