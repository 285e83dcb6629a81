package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// RefundRepository implements repositories.RefundRepository using SQLite
type RefundRepository struct {
	*BaseRepository
}

// NewRefundRepository creates a new SQLite refund repository
func NewRefundRepository(db *sql.DB, logger *logrus.Logger) *RefundRepository {
	return &RefundRepository{
		BaseRepository: NewBaseRepository(db, "order_refunds", logger),
	}
}

const refundColumns = `id, order_id, request_type, status, amount, order_item_ids,
	refund_method, mp_refund_id, voucher_id, created_at, updated_at`

// Create inserts a refund request
func (r *RefundRepository) Create(ctx context.Context, refund *models.OrderRefund) error {
	if err := refund.Validate(); err != nil {
		return repositories.ValidationError("order_refund", refund.ID, err)
	}

	itemIDsJSON, err := marshalItemIDs(refund.OrderItemIDs)
	if err != nil {
		return repositories.NewRepositoryError("create", "order_refund", refund.ID, err)
	}

	query := `INSERT INTO order_refunds (id, order_id, request_type, status, amount,
	              order_item_ids, refund_method, mp_refund_id, voucher_id, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.executeExec(ctx, "create", query,
		refund.ID, refund.OrderID, refund.RequestType, refund.Status, refund.Amount,
		itemIDsJSON, refund.RefundMethod, refund.MPRefundID, refund.VoucherID,
		refund.CreatedAt, refund.UpdatedAt)
	return err
}

// GetByID retrieves a refund request by ID
func (r *RefundRepository) GetByID(ctx context.Context, id string) (*models.OrderRefund, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := "SELECT " + refundColumns + " FROM order_refunds WHERE id = ?"

	row := r.executeQueryRow(ctx, "get", query, id)
	refund, err := scanRefund(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("order_refund", id)
		}
		return nil, repositories.NewRepositoryError("get", "order_refund", id, err)
	}

	return refund, nil
}

// ListByOrder retrieves refund requests for an order, newest first
func (r *RefundRepository) ListByOrder(ctx context.Context, orderID string) ([]*models.OrderRefund, error) {
	if err := r.validateID(orderID); err != nil {
		return nil, err
	}

	query := "SELECT " + refundColumns + " FROM order_refunds WHERE order_id = ? ORDER BY created_at DESC"

	rows, err := r.executeQuery(ctx, "list_by_order", query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []*models.OrderRefund
	for rows.Next() {
		refund, err := scanRefund(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list_by_order", "order_refund", orderID, err)
		}
		refunds = append(refunds, refund)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_by_order", "order_refund", orderID, err)
	}

	return refunds, nil
}

// Update persists the refund request's mutable fields
func (r *RefundRepository) Update(ctx context.Context, refund *models.OrderRefund) error {
	if err := r.validateID(refund.ID); err != nil {
		return err
	}
	if err := refund.Validate(); err != nil {
		return repositories.ValidationError("order_refund", refund.ID, err)
	}

	itemIDsJSON, err := marshalItemIDs(refund.OrderItemIDs)
	if err != nil {
		return repositories.NewRepositoryError("update", "order_refund", refund.ID, err)
	}

	query := `UPDATE order_refunds SET status = ?, amount = ?, order_item_ids = ?,
	              refund_method = ?, mp_refund_id = ?, voucher_id = ?, updated_at = CURRENT_TIMESTAMP
	          WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		refund.Status, refund.Amount, itemIDsJSON, refund.RefundMethod,
		refund.MPRefundID, refund.VoucherID, refund.ID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", refund.ID)
}

func marshalItemIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding order item IDs: %w", err)
	}
	return string(data), nil
}

func scanRefund(s scanner) (*models.OrderRefund, error) {
	var refund models.OrderRefund
	var itemIDsJSON string
	var refundMethod, mpRefundID, voucherID sql.NullString

	err := s.Scan(&refund.ID, &refund.OrderID, &refund.RequestType, &refund.Status,
		&refund.Amount, &itemIDsJSON, &refundMethod, &mpRefundID, &voucherID,
		&refund.CreatedAt, &refund.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(itemIDsJSON), &refund.OrderItemIDs); err != nil {
		return nil, fmt.Errorf("decoding order item IDs: %w", err)
	}

	if refundMethod.Valid {
		method := models.RefundMethod(refundMethod.String)
		refund.RefundMethod = &method
	}
	refund.MPRefundID = nullableString(mpRefundID)
	refund.VoucherID = nullableString(voucherID)

	return &refund, nil
}
