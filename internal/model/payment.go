package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one entry of a customer's payment history. Rows are kept in
// entry order, which is not necessarily the order of Date.
type PaymentRecord struct {
	ID         string          `db:"id" json:"id"` // ULID
	CustomerID string          `db:"customer_id" json:"customer_id"`
	Date       time.Time       `db:"paid_at" json:"date"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	MonthLabel string          `db:"month_label" json:"month_label"` // e.g. "February 2024"
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
