package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type stubCustomers struct {
	rows map[string]model.Customer
}

func (s *stubCustomers) Get(_ context.Context, id string) (*model.Customer, error) {
	c, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *stubCustomers) GetForUpdate(ctx context.Context, _ *sqlx.Tx, id string) (*model.Customer, error) {
	return s.Get(ctx, id)
}

func (s *stubCustomers) List(context.Context) ([]model.Customer, error) { return nil, nil }

func (s *stubCustomers) Insert(context.Context, *sqlx.Tx, model.Customer) error { return nil }

func (s *stubCustomers) Update(context.Context, *sqlx.Tx, model.Customer) (bool, error) {
	return true, nil
}

func (s *stubCustomers) UpdateBilling(context.Context, *sqlx.Tx, string, time.Time, model.PaymentStatus) error {
	return nil
}

func (s *stubCustomers) Delete(context.Context, string) (bool, error) { return true, nil }

type memInvoices struct {
	rows []model.SavedInvoice
}

func (m *memInvoices) Insert(_ context.Context, _ *sqlx.Tx, inv model.SavedInvoice) error {
	m.rows = append(m.rows, inv)
	return nil
}

func (m *memInvoices) Get(_ context.Context, id string) (*model.SavedInvoice, error) {
	for _, inv := range m.rows {
		if inv.ID == id {
			return &inv, nil
		}
	}
	return nil, nil
}

func (m *memInvoices) List(_ context.Context, customerID string) ([]model.SavedInvoice, error) {
	out := []model.SavedInvoice{}
	for _, inv := range m.rows {
		if customerID == "" || inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) Delete(_ context.Context, _ *sqlx.Tx, id string) (bool, error) {
	for i, inv := range m.rows {
		if inv.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memOutbox struct {
	envs []model.Envelope
}

func (m *memOutbox) Insert(context.Context, *sqlx.Tx, model.OutboxEvent) error {
	return nil
}

func (m *memOutbox) InsertEnvelope(_ context.Context, _ *sqlx.Tx, _, _, _ string, env model.Envelope) error {
	m.envs = append(m.envs, env)
	return nil
}

func newTestService(t *testing.T, today time.Time) (*Service, sqlmock.Sqlmock, *stubCustomers, *memOutbox) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	customers := &stubCustomers{rows: map[string]model.Customer{
		"cust-ana": {
			ID:                   "cust-ana",
			FullName:             "Ana García",
			ServiceType:          model.ServiceRouter,
			ClientTimeType:       model.TimeMonthly,
			BillingDate:          day(2024, 1, 31),
			MonthlyPrice:         decimal.RequireFromString("25.50"),
			CurrentPaymentStatus: model.PaymentPending,
		},
	}}
	outbox := &memOutbox{}
	svc := New(sqlx.NewDb(raw, "mysql"), customers, &memInvoices{}, outbox, billing.FixedClock(today.Add(9*time.Hour)))
	return svc, mock, customers, outbox
}

func TestPreview(t *testing.T) {
	svc, mock, _, _ := newTestService(t, day(2024, 1, 20))

	inv, err := svc.Preview(context.Background(), "cust-ana")
	require.NoError(t, err)

	assert.Equal(t, "INV-CUST-20240120", inv.Number)
	assert.Equal(t, day(2024, 1, 31), inv.PeriodStart)
	assert.Equal(t, day(2024, 2, 28), inv.PeriodEnd)
	assert.True(t, decimal.RequireFromString("25.50").Equal(inv.Amount))
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = svc.Preview(context.Background(), "missing")
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestSave_SnapshotSurvivesCustomerEdits(t *testing.T) {
	svc, mock, customers, outbox := newTestService(t, day(2024, 1, 20))
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	saved, err := svc.Save(ctx, "cust-ana")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	c := customers.rows["cust-ana"]
	c.FullName = "Ana María García"
	c.MonthlyPrice = decimal.NewFromInt(40)
	customers.rows["cust-ana"] = c

	got, err := svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana García", got.CustomerName)
	assert.True(t, decimal.RequireFromString("25.50").Equal(got.Amount))

	require.Len(t, outbox.envs, 1)
	assert.Equal(t, model.EventInvoiceSaved, outbox.envs[0].Type)
}

func TestSave_SameDayKeepsBothSnapshots(t *testing.T) {
	svc, mock, _, _ := newTestService(t, day(2024, 1, 20))
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	first, err := svc.Save(ctx, "cust-ana")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	second, err := svc.Save(ctx, "cust-ana")
	require.NoError(t, err)

	assert.Equal(t, first.Number, second.Number)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := svc.List(ctx, "cust-ana")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDelete(t *testing.T) {
	svc, mock, _, outbox := newTestService(t, day(2024, 1, 20))
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	saved, err := svc.Save(ctx, "cust-ana")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, svc.Delete(ctx, saved.ID))
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, outbox.envs, 2)
	assert.Equal(t, model.EventInvoiceDeleted, outbox.envs[1].Type)
	assert.Equal(t, "cust-ana", outbox.envs[1].CustomerID)

	assert.ErrorIs(t, svc.Delete(ctx, saved.ID), ErrInvoiceNotFound)
	_, err = svc.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
