package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavedInvoice is an immutable snapshot taken when an invoice is generated.
// Number is the human facing INV-XXXX-YYYYMMDD identifier and may repeat when
// the same customer is invoiced twice on one day; ID is the row key.
type SavedInvoice struct {
	ID                  string          `db:"id" json:"id"`
	Number              string          `db:"number" json:"number"`
	CustomerID          string          `db:"customer_id" json:"customer_id"`
	CustomerName        string          `db:"customer_name" json:"customer_name"`
	IssueDate           time.Time       `db:"issue_date" json:"issue_date"`
	ServiceType         ServiceType     `db:"service_type" json:"service_type"`
	ClientTimeType      ClientTimeType  `db:"client_time_type" json:"client_time_type"`
	PeriodStart         time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd           time.Time       `db:"period_end" json:"period_end"`
	Amount              decimal.Decimal `db:"amount" json:"amount"`
	OriginalBillingDate time.Time       `db:"original_billing_date" json:"original_billing_date"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
