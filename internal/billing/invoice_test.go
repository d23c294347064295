package billing

import (
	"testing"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoiceID(t *testing.T) {
	assert.Equal(t, "INV-ABCD-20240305", GenerateInvoiceID("abcd1234", date(2024, time.March, 5)))
	assert.Equal(t, "INV-AB-20241231", GenerateInvoiceID("ab", date(2024, time.December, 31)))
	assert.Equal(t,
		GenerateInvoiceID("3f2a-xyz", date(2024, 3, 5)),
		GenerateInvoiceID("3f2a-xyz", time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)),
	)
}

func TestComputeInvoicePeriod(t *testing.T) {
	p, err := ComputeInvoicePeriod(date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 31), p.Start)
	assert.Equal(t, date(2024, time.February, 28), p.End)

	p, err = ComputeInvoicePeriod(date(2024, time.March, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.April, 14), p.End)

	_, err = ComputeInvoicePeriod(time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestComputeInvoicePeriod_EndsTheDayBeforeNextBilling(t *testing.T) {
	d := date(2023, time.January, 1)
	for i := 0; i < 800; i++ {
		day := d.AddDate(0, 0, i)
		p, err := ComputeInvoicePeriod(day)
		require.NoError(t, err)
		assert.Equal(t, NextBillingDate(day), p.End.AddDate(0, 0, 1), "billing=%s", day.Format("2006-01-02"))
	}
}

func TestNewSavedInvoice(t *testing.T) {
	c := model.Customer{
		ID:             "abcd1234-0000",
		FullName:       "Ana Garcia",
		ServiceType:    model.ServiceRouter,
		ClientTimeType: model.TimeMonthly,
		BillingDate:    date(2024, time.March, 1),
		MonthlyPrice:   decimal.RequireFromString("25.50"),
	}

	inv, err := NewSavedInvoice(c, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), "row-1")
	require.NoError(t, err)
	assert.Equal(t, "row-1", inv.ID)
	assert.Equal(t, "INV-ABCD-20240305", inv.Number)
	assert.Equal(t, "Ana Garcia", inv.CustomerName)
	assert.Equal(t, date(2024, time.March, 5), inv.IssueDate)
	assert.Equal(t, date(2024, time.March, 1), inv.PeriodStart)
	assert.Equal(t, date(2024, time.March, 31), inv.PeriodEnd)
	assert.True(t, inv.Amount.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, c.BillingDate, inv.OriginalBillingDate)

	_, err = NewSavedInvoice(model.Customer{}, date(2024, 3, 5), "x")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	_, err = NewSavedInvoice(c, time.Time{}, "x")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
