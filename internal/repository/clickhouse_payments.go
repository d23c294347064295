package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// PaymentEvent is one row of billing.payment_events. Sign is +1 for a recorded
// payment and -1 for a deleted one so sums net out deletions.
type PaymentEvent struct {
	EventID    string          `db:"event_id"`
	EventType  string          `db:"event_type"`
	CustomerID string          `db:"customer_id"`
	PaymentID  string          `db:"payment_id"`
	PaidAt     time.Time       `db:"paid_at"`
	Amount     decimal.Decimal `db:"amount"`
	Sign       int8            `db:"sign"`
	OccurredAt time.Time       `db:"occurred_at"`
}

// MonthlyRevenue is the net amount collected in one calendar month.
type MonthlyRevenue struct {
	Month    time.Time       `db:"month" json:"month"`
	Revenue  decimal.Decimal `db:"revenue" json:"revenue"`
	Payments int64           `db:"payments" json:"payments"`
}

// CHPaymentsRepository reads and writes the ClickHouse payment projection.
type CHPaymentsRepository interface {
	InsertBatch(ctx context.Context, events []PaymentEvent) error
	MonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error)
}

type chPaymentsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHPaymentsRepository(ch *sqlx.DB) CHPaymentsRepository {
	return &chPaymentsRepository{ch: ch}
}

// InsertBatch appends events in one ClickHouse block (prepared insert inside a tx).
func (r *chPaymentsRepository) InsertBatch(ctx context.Context, events []PaymentEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.ch.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO billing.payment_events
		    (event_id, event_type, customer_id, payment_id, paid_at, amount, sign, occurred_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.EventID, e.EventType, e.CustomerID, e.PaymentID, e.PaidAt, e.Amount, e.Sign, e.OccurredAt,
		); err != nil {
			return fmt.Errorf("append %s: %w", e.EventID, err)
		}
	}

	return tx.Commit()
}

func (r *chPaymentsRepository) MonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error) {
	const q = `
		SELECT toStartOfMonth(paid_at) AS month,
		       toString(sum(amount * sign)) AS revenue,
		       toInt64(sum(sign))           AS payments
		FROM billing.payment_events FINAL
		WHERE paid_at >= ? AND paid_at <= ?
		GROUP BY month
		ORDER BY month
	`
	rows := []MonthlyRevenue{}
	if err := r.ch.SelectContext(ctx, &rows, q, from, to); err != nil {
		return nil, err
	}
	return rows, nil
}
