package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmoiron/sqlx"
)

type CustomersRepository interface {
	// Get returns (nil, nil) when the customer does not exist.
	Get(ctx context.Context, id string) (*model.Customer, error)
	// GetForUpdate locks the customer row for the rest of tx.
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	Insert(ctx context.Context, tx *sqlx.Tx, c model.Customer) error
	Update(ctx context.Context, tx *sqlx.Tx, c model.Customer) (bool, error)
	UpdateBilling(ctx context.Context, tx *sqlx.Tx, id string, billingDate time.Time, status model.PaymentStatus) error
	Delete(ctx context.Context, id string) (bool, error)
}

type CustomersRepositoryImpl struct {
	db *sqlx.DB
}

func NewCustomersRepository(db *sqlx.DB) *CustomersRepositoryImpl {
	return &CustomersRepositoryImpl{db: db}
}

var _ CustomersRepository = (*CustomersRepositoryImpl)(nil)

const customerColumns = `id, full_name, service_type, client_time_type, phone_number,
		service_start_date, billing_date, monthly_price, current_payment_status,
		observations, plan_speed, profile_name, created_at, updated_at`

const paymentColumns = `id, customer_id, paid_at, amount, month_label, created_at`

func (r *CustomersRepositoryImpl) Get(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.GetContext(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE id = ? LIMIT 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hist, err := paymentsOf(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	c.PaymentHistory = hist
	return &c, nil
}

func (r *CustomersRepositoryImpl) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Customer, error) {
	var c model.Customer
	err := tx.GetContext(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE id = ? FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hist, err := paymentsOf(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	c.PaymentHistory = hist
	return &c, nil
}

// List returns every customer, newest first, with payment histories attached.
func (r *CustomersRepositoryImpl) List(ctx context.Context) ([]model.Customer, error) {
	var rows []model.Customer
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id`); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}
	query, args, err := sqlx.In(`SELECT `+paymentColumns+` FROM payments WHERE customer_id IN (?) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, err
	}

	var pays []model.PaymentRecord
	if err := r.db.SelectContext(ctx, &pays, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byCustomer := make(map[string][]model.PaymentRecord, len(rows))
	for _, p := range pays {
		byCustomer[p.CustomerID] = append(byCustomer[p.CustomerID], p)
	}
	for i := range rows {
		rows[i].PaymentHistory = byCustomer[rows[i].ID]
		if rows[i].PaymentHistory == nil {
			rows[i].PaymentHistory = []model.PaymentRecord{}
		}
	}
	return rows, nil
}

func (r *CustomersRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, c model.Customer) error {
	const q = `
		INSERT INTO customers
		    (id, full_name, service_type, client_time_type, phone_number, service_start_date,
		     billing_date, monthly_price, current_payment_status, observations, plan_speed,
		     profile_name, created_at, updated_at)
		VALUES
		    (:id, :full_name, :service_type, :client_time_type, :phone_number, :service_start_date,
		     :billing_date, :monthly_price, :current_payment_status, :observations, :plan_speed,
		     :profile_name, NOW(6), NOW(6))
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, q, c)
		return mapWriteErr(err)
	})
}

// Update overwrites the editable fields. Payment history is not touched.
func (r *CustomersRepositoryImpl) Update(ctx context.Context, tx *sqlx.Tx, c model.Customer) (bool, error) {
	const q = `
		UPDATE customers SET
		    full_name = :full_name,
		    service_type = :service_type,
		    client_time_type = :client_time_type,
		    phone_number = :phone_number,
		    service_start_date = :service_start_date,
		    billing_date = :billing_date,
		    monthly_price = :monthly_price,
		    current_payment_status = :current_payment_status,
		    observations = :observations,
		    plan_speed = :plan_speed,
		    profile_name = :profile_name,
		    updated_at = NOW(6)
		WHERE id = :id
	`
	var found bool
	err := withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, q, c)
		if err != nil {
			return mapWriteErr(err)
		}
		n, err := res.RowsAffected()
		found = n > 0
		return err
	})
	return found, err
}

// UpdateBilling writes the two fields a recorded payment changes.
func (r *CustomersRepositoryImpl) UpdateBilling(ctx context.Context, tx *sqlx.Tx, id string, billingDate time.Time, status model.PaymentStatus) error {
	const q = `
		UPDATE customers
		SET billing_date = ?, current_payment_status = ?, updated_at = NOW(6)
		WHERE id = ?
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, billingDate, status.String(), id)
		return err
	})
}

// Delete removes the customer; payments go with it (FK cascade).
func (r *CustomersRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func paymentsOf(ctx context.Context, q sqlx.QueryerContext, customerID string) ([]model.PaymentRecord, error) {
	out := []model.PaymentRecord{}
	err := sqlx.SelectContext(ctx, q, &out,
		`SELECT `+paymentColumns+` FROM payments WHERE customer_id = ? ORDER BY created_at, id`, customerID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
