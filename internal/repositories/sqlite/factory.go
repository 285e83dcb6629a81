package sqlite

import (
	"database/sql"

	"store-backend-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// NewRepositoryContainer wires all SQLite repositories against one database handle
func NewRepositoryContainer(db *sql.DB, logger *logrus.Logger) *repositories.RepositoryContainer {
	return &repositories.RepositoryContainer{
		ProfileRepo: NewProfileRepository(db, logger),
		ProductRepo: NewProductRepository(db, logger),
		OrderRepo:   NewOrderRepository(db, logger),
		VoucherRepo: NewVoucherRepository(db, logger),
		RefundRepo:  NewRefundRepository(db, logger),
	}
}
