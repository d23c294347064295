package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmoiron/sqlx"
)

// InvoicesRepository stores saved invoice snapshots. Rows are never updated.
type InvoicesRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, inv model.SavedInvoice) error
	Get(ctx context.Context, id string) (*model.SavedInvoice, error)
	List(ctx context.Context, customerID string) ([]model.SavedInvoice, error)
	Delete(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
}

type InvoicesRepositoryImpl struct {
	db *sqlx.DB
}

func NewInvoicesRepository(db *sqlx.DB) *InvoicesRepositoryImpl {
	return &InvoicesRepositoryImpl{db: db}
}

var _ InvoicesRepository = (*InvoicesRepositoryImpl)(nil)

const invoiceColumns = `id, number, customer_id, customer_name, issue_date, service_type,
		client_time_type, period_start, period_end, amount, original_billing_date, created_at`

func (r *InvoicesRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, inv model.SavedInvoice) error {
	const q = `
		INSERT INTO saved_invoices
		    (id, number, customer_id, customer_name, issue_date, service_type, client_time_type,
		     period_start, period_end, amount, original_billing_date, created_at)
		VALUES
		    (:id, :number, :customer_id, :customer_name, :issue_date, :service_type, :client_time_type,
		     :period_start, :period_end, :amount, :original_billing_date, NOW(6))
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, q, inv)
		return err
	})
}

// Get returns (nil, nil) when no invoice has the id.
func (r *InvoicesRepositoryImpl) Get(ctx context.Context, id string) (*model.SavedInvoice, error) {
	var inv model.SavedInvoice
	err := r.db.GetContext(ctx, &inv, `SELECT `+invoiceColumns+` FROM saved_invoices WHERE id = ? LIMIT 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns saved invoices newest first, optionally for one customer.
func (r *InvoicesRepositoryImpl) List(ctx context.Context, customerID string) ([]model.SavedInvoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM saved_invoices`
	args := []any{}
	if customerID != "" {
		q += " WHERE customer_id = ?"
		args = append(args, customerID)
	}
	q += " ORDER BY created_at DESC, id"

	out := []model.SavedInvoice{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvoicesRepositoryImpl) Delete(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	var found bool
	err := withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM saved_invoices WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		found = n > 0
		return err
	})
	return found, err
}
