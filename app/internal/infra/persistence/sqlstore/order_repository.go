package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	domcart "example.com/mystic-prints/app/internal/domain/cart"
	domorder "example.com/mystic-prints/app/internal/domain/order"
)

// OrderRepository stores placed orders and the per-user cart order that
// mirrors a signed-in shopper's cart.
type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, status, total, shipping_address, printful_order_id, created_at, updated_at`

// LoadCart returns the lines of the user's cart order, or an empty snapshot
// when there is none.
func (r *OrderRepository) LoadCart(ctx context.Context, userID int64) (domcart.Snapshot, error) {
	rows, err := r.db.query(ctx, r.db, `
        SELECT oi.product_id, p.title, p.artist, oi.price, oi.quantity, p.image, p.product_type, oi.variant_id, oi.size
        FROM order_items oi
        JOIN orders o ON o.id = oi.order_id
        JOIN products p ON p.id = oi.product_id
        WHERE o.user_id = ? AND o.status = ?
        ORDER BY oi.id
    `, userID, string(domorder.StatusCart))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := domcart.Snapshot{}
	for rows.Next() {
		var l domcart.Line
		if err := rows.Scan(&l.ProductID, &l.Title, &l.Artist, &l.UnitPrice, &l.Quantity, &l.ImageRef, &l.ProductType, &l.VariantID, &l.Size); err != nil {
			return nil, err
		}
		if l.Size == "" {
			l.Size = "medium"
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// SaveCart replaces the user's cart order with lines in one transaction,
// creating the order on first save.
func (r *OrderRepository) SaveCart(ctx context.Context, userID int64, lines domcart.Snapshot) error {
	total := lines.Total()
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		orderID, err := r.cartOrderID(ctx, tx, userID)
		switch {
		case errors.Is(err, domorder.ErrOrderNotFound):
			orderID, err = r.db.insert(ctx, tx, `
                INSERT INTO orders (user_id, status, total)
                VALUES (?, ?, ?)
            `, userID, string(domorder.StatusCart), total)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if _, err := r.db.exec(ctx, tx, `
                UPDATE orders SET total = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
            `, total, orderID); err != nil {
				return err
			}
			if _, err := r.db.exec(ctx, tx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
				return err
			}
		}

		for _, l := range lines {
			if _, err := r.db.exec(ctx, tx, `
                INSERT INTO order_items (order_id, product_id, variant_id, quantity, price, size)
                VALUES (?, ?, ?, ?, ?, ?)
            `, orderID, l.ProductID, l.VariantID, l.Quantity, l.UnitPrice, l.Size); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCart removes the user's cart order and its items. Missing is fine.
func (r *OrderRepository) DeleteCart(ctx context.Context, userID int64) error {
	_, err := r.db.exec(ctx, r.db, `DELETE FROM orders WHERE user_id = ? AND status = ?`, userID, string(domorder.StatusCart))
	return err
}

func (r *OrderRepository) FindCartOrder(ctx context.Context, userID int64) (*domorder.Order, error) {
	row := r.db.queryRow(ctx, r.db, `
        SELECT `+orderColumns+` FROM orders WHERE user_id = ? AND status = ?
    `, userID, string(domorder.StatusCart))
	return r.scanWithItems(ctx, row)
}

// MarkPending moves a cart order to pending with the shipping details and
// the fulfillment provider's order id.
func (r *OrderRepository) MarkPending(ctx context.Context, id int64, shipping domorder.ShippingInfo, fulfillmentOrderID string) error {
	raw, err := json.Marshal(shipping)
	if err != nil {
		return err
	}
	res, err := r.db.exec(ctx, r.db, `
        UPDATE orders
        SET status = ?, shipping_address = ?, printful_order_id = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND status = ?
    `, string(domorder.StatusPending), string(raw), nullString(fulfillmentOrderID), id, string(domorder.StatusCart))
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domorder.ErrOrderNotFound
	}
	return nil
}

// List returns orders newest first.
func (r *OrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var where []string
	args := []any{}
	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.UserID != nil {
		where = append(where, `user_id = ?`)
		args = append(args, *filter.UserID)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = r.listOrderItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	row := r.db.queryRow(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return r.scanWithItems(ctx, row)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	res, err := r.db.exec(ctx, r.db, `
        UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
    `, string(status), id)
	if err != nil {
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, domorder.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) cartOrderID(ctx context.Context, q queryer, userID int64) (int64, error) {
	var id int64
	err := r.db.queryRow(ctx, q, `SELECT id FROM orders WHERE user_id = ? AND status = ? FOR UPDATE`,
		userID, string(domorder.StatusCart)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domorder.ErrOrderNotFound
	}
	return id, err
}

func (r *OrderRepository) scanWithItems(ctx context.Context, row *sql.Row) (*domorder.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.listOrderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) listOrderItems(ctx context.Context, orderID int64) ([]domorder.OrderItem, error) {
	rows, err := r.db.query(ctx, r.db, `
        SELECT id, order_id, product_id, variant_id, size, price, quantity
        FROM order_items WHERE order_id = ?
        ORDER BY id
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domorder.OrderItem
	for rows.Next() {
		var item domorder.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Size, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(s scanner) (*domorder.Order, error) {
	var o domorder.Order
	var status string
	var shipping []byte
	var fulfillmentID sql.NullString
	if err := s.Scan(&o.ID, &o.UserID, &status, &o.Total, &shipping, &fulfillmentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	o.Status = domorder.Status(status)
	o.FulfillmentOrderID = fulfillmentID.String
	if len(shipping) > 0 {
		var info domorder.ShippingInfo
		if err := json.Unmarshal(shipping, &info); err != nil {
			return nil, err
		}
		o.ShippingAddress = &info
	}
	return &o, nil
}
