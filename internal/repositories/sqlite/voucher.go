package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// VoucherRepository implements repositories.VoucherRepository using SQLite
type VoucherRepository struct {
	*BaseRepository
}

// NewVoucherRepository creates a new SQLite voucher repository
func NewVoucherRepository(db *sql.DB, logger *logrus.Logger) *VoucherRepository {
	return &VoucherRepository{
		BaseRepository: NewBaseRepository(db, "vouchers", logger),
	}
}

const voucherColumns = "id, code, amount, order_id, valid_until, created_at"

// Create inserts a voucher
func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	if err := voucher.Validate(); err != nil {
		return repositories.ValidationError("voucher", voucher.ID, err)
	}

	query := `INSERT INTO vouchers (id, code, amount, order_id, valid_until, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		voucher.ID, voucher.Code, voucher.Amount, voucher.OrderID,
		voucher.ValidUntil, voucher.CreatedAt)
	if err != nil {
		if repositories.IsDuplicate(err) {
			return repositories.DuplicateError("voucher", "code", voucher.Code)
		}
		return err
	}

	return nil
}

// GetByCode retrieves a voucher by its code
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, repositories.NewRepositoryError("get_by_code", "voucher", code, repositories.ErrInvalidID)
	}

	query := "SELECT " + voucherColumns + " FROM vouchers WHERE code = ?"

	row := r.executeQueryRow(ctx, "get_by_code", query, code)
	voucher, err := scanVoucher(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("voucher", code)
		}
		return nil, repositories.NewRepositoryError("get_by_code", "voucher", code, err)
	}

	return voucher, nil
}

// GetByOrderID retrieves vouchers linked to an order
func (r *VoucherRepository) GetByOrderID(ctx context.Context, orderID string) ([]*models.Voucher, error) {
	if err := r.validateID(orderID); err != nil {
		return nil, err
	}

	query := "SELECT " + voucherColumns + " FROM vouchers WHERE order_id = ? ORDER BY created_at DESC"

	rows, err := r.executeQuery(ctx, "get_by_order", query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vouchers []*models.Voucher
	for rows.Next() {
		voucher, err := scanVoucher(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("get_by_order", "voucher", orderID, err)
		}
		vouchers = append(vouchers, voucher)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("get_by_order", "voucher", orderID, err)
	}

	return vouchers, nil
}

func scanVoucher(s scanner) (*models.Voucher, error) {
	var v models.Voucher
	var orderID sql.NullString

	if err := s.Scan(&v.ID, &v.Code, &v.Amount, &orderID, &v.ValidUntil, &v.CreatedAt); err != nil {
		return nil, err
	}

	v.OrderID = nullableString(orderID)
	return &v, nil
}
