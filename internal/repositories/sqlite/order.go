package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// OrderRepository implements repositories.OrderRepository using SQLite
type OrderRepository struct {
	*BaseRepository
}

// NewOrderRepository creates a new SQLite order repository
func NewOrderRepository(db *sql.DB, logger *logrus.Logger) *OrderRepository {
	return &OrderRepository{
		BaseRepository: NewBaseRepository(db, "orders", logger),
	}
}

const orderColumns = `id, user_id, status, total_amount, payment_method, installments,
	mp_payment_id, payment_code, payment_url, payment_expiration, payer,
	shipping_service, shipping_amount, melhor_envio_order_id, tracking_code,
	created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, product_name, image_url,
	quantity, price, price_at_purchase, color, size`

// Create inserts the order and its items in one transaction
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	if err := order.Validate(); err != nil {
		return repositories.ValidationError("order", order.ID, err)
	}

	payerJSON, err := marshalPayer(order.Payer)
	if err != nil {
		return repositories.NewRepositoryError("create", "order", order.ID, err)
	}

	return r.withTx(ctx, "create_order", func(tx *sql.Tx) error {
		orderQuery := `INSERT INTO orders (id, user_id, status, total_amount, payment_method,
		                   installments, mp_payment_id, payment_code, payment_url, payment_expiration,
		                   payer, shipping_service, shipping_amount, melhor_envio_order_id,
		                   tracking_code, created_at, updated_at)
		               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.ExecContext(ctx, orderQuery,
			order.ID, order.UserID, order.Status, order.TotalAmount, order.PaymentMethod,
			order.Installments, order.MPPaymentID, order.PaymentCode, order.PaymentURL,
			order.PaymentExpiration, payerJSON, order.ShippingService, order.ShippingAmount,
			order.MelhorEnvioOrderID, order.TrackingCode, order.CreatedAt, order.UpdatedAt)
		if err != nil {
			return repositories.NewRepositoryError("create", "order", order.ID, err)
		}

		if len(items) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO order_items (id, order_id, product_id,
			product_name, image_url, quantity, price, price_at_purchase, color, size)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return repositories.NewRepositoryError("create", "order_item", "", err)
		}
		defer stmt.Close()

		for _, item := range items {
			item.OrderID = order.ID
			_, err := stmt.ExecContext(ctx, item.ID, item.OrderID, item.ProductID,
				item.ProductName, item.ImageURL, item.Quantity, item.Price,
				item.PriceAtPurchase, item.Color, item.Size)
			if err != nil {
				return repositories.NewRepositoryError("create", "order_item", item.ID, err)
			}
		}

		order.Items = items
		return nil
	})
}

// GetByID retrieves an order. A non-empty userID restricts the lookup to
// orders owned by that user.
func (r *OrderRepository) GetByID(ctx context.Context, orderID, userID string) (*models.Order, error) {
	if err := r.validateID(orderID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = ?", orderColumns)
	args := []interface{}{orderID}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	row := r.executeQueryRow(ctx, "get", query, args...)
	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("order", orderID)
		}
		return nil, repositories.NewRepositoryError("get", "order", orderID, err)
	}

	return order, nil
}

// GetWithItems retrieves an order and populates its items
func (r *OrderRepository) GetWithItems(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := r.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	items, err := r.getItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListByUser retrieves a user's orders newest first with the total count
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Order, int64, error) {
	if err := r.validateID(userID); err != nil {
		return nil, 0, err
	}
	page, limit = normalizePage(page, limit)

	total, err := r.countRows(ctx, "list_by_user", "WHERE user_id = ?", userID)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, orderColumns)

	rows, err := r.executeQuery(ctx, "list_by_user", query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, repositories.NewRepositoryError("list_by_user", "order", userID, err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListAll retrieves all orders newest first with the owner's email joined in
func (r *OrderRepository) ListAll(ctx context.Context, page, limit int) ([]*models.Order, int64, error) {
	page, limit = normalizePage(page, limit)

	total, err := r.countRows(ctx, "list_all", "")
	if err != nil {
		return nil, 0, err
	}

	cols := prefixColumns(orderColumns, "o")
	query := fmt.Sprintf(`SELECT %s, p.email FROM orders o
		LEFT JOIN profiles p ON p.id = o.user_id
		ORDER BY o.created_at DESC LIMIT ? OFFSET ?`, cols)

	rows, err := r.executeQuery(ctx, "list_all", query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, email, err := scanOrderWithEmail(rows)
		if err != nil {
			return nil, 0, repositories.NewRepositoryError("list_all", "order", "", err)
		}
		order.UserEmail = email
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, repositories.NewRepositoryError("list_all", "order", "", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetItemsByIDs retrieves order items by ID, scoped to one order
func (r *OrderRepository) GetItemsByIDs(ctx context.Context, orderID string, itemIDs []string) ([]*models.OrderItem, error) {
	if err := r.validateID(orderID); err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(itemIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`SELECT %s FROM order_items
		WHERE order_id = ? AND id IN (%s)`, orderItemColumns, placeholders)

	args := make([]interface{}, 0, len(itemIDs)+1)
	args = append(args, orderID)
	for _, id := range itemIDs {
		args = append(args, id)
	}

	rows, err := r.executeQuery(ctx, "get_items", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectOrderItems(rows)
	if err != nil {
		return nil, repositories.NewRepositoryError("get_items", "order_item", orderID, err)
	}

	return items, nil
}

// UpdateStatus sets the order status and bumps updated_at
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if err := r.validateID(orderID); err != nil {
		return nil, err
	}
	if !models.IsValidOrderStatus(status) {
		return nil, repositories.ValidationError("order", orderID,
			fmt.Errorf("invalid order status: %s", status))
	}

	result, err := r.executeExec(ctx, "update_status",
		"UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, orderID)
	if err != nil {
		return nil, err
	}
	if err := r.checkRowsAffected(result, "update_status", orderID); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, orderID, "")
}

// Delete removes an order; items and refunds cascade, vouchers are unlinked
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if err := r.validateID(orderID); err != nil {
		return err
	}

	result, err := r.executeExec(ctx, "delete", "DELETE FROM orders WHERE id = ?", orderID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", orderID)
}

// GetByMelhorEnvioID retrieves an order by its carrier order ID
func (r *OrderRepository) GetByMelhorEnvioID(ctx context.Context, meOrderID string) (*models.Order, error) {
	if err := r.validateID(meOrderID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM orders WHERE melhor_envio_order_id = ?", orderColumns)

	row := r.executeQueryRow(ctx, "get_by_me_id", query, meOrderID)
	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("order", meOrderID)
		}
		return nil, repositories.NewRepositoryError("get_by_me_id", "order", meOrderID, err)
	}

	return order, nil
}

// SetMelhorEnvioOrderID stores the carrier order ID on the order
func (r *OrderRepository) SetMelhorEnvioOrderID(ctx context.Context, orderID, meOrderID string) error {
	if err := r.validateID(orderID); err != nil {
		return err
	}

	result, err := r.executeExec(ctx, "set_me_order_id",
		"UPDATE orders SET melhor_envio_order_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		meOrderID, orderID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "set_me_order_id", orderID)
}

// UpdateTracking stores the tracking code and optionally a new status
func (r *OrderRepository) UpdateTracking(ctx context.Context, orderID, trackingCode string, status *models.OrderStatus) error {
	if err := r.validateID(orderID); err != nil {
		return err
	}

	query := "UPDATE orders SET tracking_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	args := []interface{}{trackingCode, orderID}
	if status != nil {
		if !models.IsValidOrderStatus(*status) {
			return repositories.ValidationError("order", orderID,
				fmt.Errorf("invalid order status: %s", *status))
		}
		query = "UPDATE orders SET tracking_code = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
		args = []interface{}{trackingCode, *status, orderID}
	}

	result, err := r.executeExec(ctx, "update_tracking", query, args...)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update_tracking", orderID)
}

func (r *OrderRepository) getItems(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	query := fmt.Sprintf("SELECT %s FROM order_items WHERE order_id = ?", orderItemColumns)

	rows, err := r.executeQuery(ctx, "get_items", query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectOrderItems(rows)
	if err != nil {
		return nil, repositories.NewRepositoryError("get_items", "order_item", orderID, err)
	}

	return items, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	for _, order := range orders {
		items, err := r.getItems(ctx, order.ID)
		if err != nil {
			return err
		}
		order.Items = items
	}
	return nil
}

func marshalPayer(payer *models.Payer) (interface{}, error) {
	if payer == nil {
		return nil, nil
	}
	data, err := json.Marshal(payer)
	if err != nil {
		return nil, fmt.Errorf("encoding payer: %w", err)
	}
	return string(data), nil
}

func scanOrder(s scanner) (*models.Order, error) {
	order, _, err := scanOrderFields(s, false)
	return order, err
}

func scanOrderWithEmail(s scanner) (*models.Order, *string, error) {
	return scanOrderFields(s, true)
}

func scanOrderFields(s scanner, withEmail bool) (*models.Order, *string, error) {
	var o models.Order
	var paymentMethod, mpPaymentID, paymentCode, paymentURL, paymentExpiration sql.NullString
	var payerJSON, shippingService, meOrderID, trackingCode sql.NullString
	var shippingAmount sql.NullFloat64
	var email sql.NullString

	dest := []interface{}{
		&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &paymentMethod, &o.Installments,
		&mpPaymentID, &paymentCode, &paymentURL, &paymentExpiration, &payerJSON,
		&shippingService, &shippingAmount, &meOrderID, &trackingCode,
		&o.CreatedAt, &o.UpdatedAt,
	}
	if withEmail {
		dest = append(dest, &email)
	}

	if err := s.Scan(dest...); err != nil {
		return nil, nil, err
	}

	o.PaymentMethod = nullableString(paymentMethod)
	o.MPPaymentID = nullableString(mpPaymentID)
	o.PaymentCode = nullableString(paymentCode)
	o.PaymentURL = nullableString(paymentURL)
	o.PaymentExpiration = nullableString(paymentExpiration)
	o.ShippingService = nullableString(shippingService)
	o.MelhorEnvioOrderID = nullableString(meOrderID)
	o.TrackingCode = nullableString(trackingCode)
	if shippingAmount.Valid {
		o.ShippingAmount = &shippingAmount.Float64
	}

	if payerJSON.Valid && payerJSON.String != "" {
		var payer models.Payer
		if err := json.Unmarshal([]byte(payerJSON.String), &payer); err != nil {
			return nil, nil, fmt.Errorf("decoding payer: %w", err)
		}
		o.Payer = &payer
	}

	return &o, nullableString(email), nil
}

func collectOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func collectOrderItems(rows *sql.Rows) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var imageURL, color, size sql.NullString
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&imageURL, &item.Quantity, &item.Price, &item.PriceAtPurchase, &color, &size)
		if err != nil {
			return nil, err
		}
		item.ImageURL = nullableString(imageURL)
		item.Color = nullableString(color)
		item.Size = nullableString(size)
		items = append(items, &item)
	}
	return items, rows.Err()
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = repositories.DefaultPage
	}
	if limit < 1 {
		limit = repositories.DefaultLimit
	}
	if limit > repositories.MaxLimit {
		limit = repositories.MaxLimit
	}
	return page, limit
}

func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
