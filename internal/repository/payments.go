package repository

import (
	"context"

	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmoiron/sqlx"
)

// PaymentsRepository persists payment history rows.
type PaymentsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, p model.PaymentRecord) error
	Delete(ctx context.Context, tx *sqlx.Tx, customerID, paymentID string) (bool, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.PaymentRecord, error)
}

type PaymentsRepositoryImpl struct {
	db *sqlx.DB
}

func NewPaymentsRepository(db *sqlx.DB) *PaymentsRepositoryImpl {
	return &PaymentsRepositoryImpl{db: db}
}

var _ PaymentsRepository = (*PaymentsRepositoryImpl)(nil)

func (r *PaymentsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, p model.PaymentRecord) error {
	const q = `
		INSERT INTO payments (id, customer_id, paid_at, amount, month_label, created_at)
		VALUES (?, ?, ?, ?, ?, NOW(6))
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, p.ID, p.CustomerID, p.Date, p.Amount, p.MonthLabel)
		return err
	})
}

func (r *PaymentsRepositoryImpl) Delete(ctx context.Context, tx *sqlx.Tx, customerID, paymentID string) (bool, error) {
	var found bool
	err := withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = ? AND customer_id = ?`, paymentID, customerID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		found = n > 0
		return err
	})
	return found, err
}

// ListByCustomer returns the history in entry order.
func (r *PaymentsRepositoryImpl) ListByCustomer(ctx context.Context, customerID string) ([]model.PaymentRecord, error) {
	return paymentsOf(ctx, r.db, customerID)
}
