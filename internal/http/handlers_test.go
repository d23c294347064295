package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/service/customer"
	"github.com/jmehdipour/wifi-billing/internal/service/invoice"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCustomers struct {
	created   customer.Input
	filter    billing.Filter
	payment   billing.PaymentInput
	views     map[string]customer.View
	profiles  map[string]bool
	failWith  error
	dashboard billing.Summary
}

func newStubCustomers() *stubCustomers {
	return &stubCustomers{views: map[string]customer.View{}, profiles: map[string]bool{}}
}

func (s *stubCustomers) Create(_ context.Context, in customer.Input) (customer.View, error) {
	if s.failWith != nil {
		return customer.View{}, s.failWith
	}
	s.created = in
	v := customer.View{Customer: model.Customer{ID: "c1", FullName: in.FullName, BillingDate: in.BillingDate}, Status: billing.DisplayPending}
	s.views[v.ID] = v
	return v, nil
}

func (s *stubCustomers) Update(_ context.Context, id string, in customer.Input) (customer.View, error) {
	v, ok := s.views[id]
	if !ok {
		return customer.View{}, billing.ErrCustomerNotFound
	}
	v.FullName = in.FullName
	return v, nil
}

func (s *stubCustomers) Delete(_ context.Context, id string) error {
	if _, ok := s.views[id]; !ok {
		return billing.ErrCustomerNotFound
	}
	delete(s.views, id)
	return nil
}

func (s *stubCustomers) Get(_ context.Context, id string) (customer.View, error) {
	v, ok := s.views[id]
	if !ok {
		return customer.View{}, billing.ErrCustomerNotFound
	}
	return v, nil
}

func (s *stubCustomers) List(_ context.Context, f billing.Filter) ([]customer.View, error) {
	s.filter = f
	out := []customer.View{}
	for _, v := range s.views {
		out = append(out, v)
	}
	return out, nil
}

func (s *stubCustomers) Payments(_ context.Context, id string) ([]model.PaymentRecord, error) {
	v, ok := s.views[id]
	if !ok {
		return nil, billing.ErrCustomerNotFound
	}
	return v.PaymentHistory, nil
}

func (s *stubCustomers) RecordPayment(_ context.Context, id string, in billing.PaymentInput) (customer.View, model.PaymentRecord, error) {
	v, ok := s.views[id]
	if !ok {
		return customer.View{}, model.PaymentRecord{}, billing.ErrCustomerNotFound
	}
	if err := in.Validate(); err != nil {
		return customer.View{}, model.PaymentRecord{}, err
	}
	s.payment = in
	rec := model.PaymentRecord{ID: "p1", CustomerID: id, Date: in.Date, Amount: in.Amount}
	v.PaymentHistory = append(v.PaymentHistory, rec)
	v.BillingDate = billing.NextBillingDate(v.BillingDate)
	v.Status = billing.DisplayPaid
	s.views[id] = v
	return v, rec, nil
}

func (s *stubCustomers) DeletePayment(_ context.Context, id, paymentID string) (customer.View, error) {
	v, ok := s.views[id]
	if !ok {
		return customer.View{}, billing.ErrCustomerNotFound
	}
	if paymentID != "p1" {
		return customer.View{}, billing.ErrPaymentNotFound
	}
	v.PaymentHistory = nil
	return v, nil
}

func (s *stubCustomers) Dashboard(context.Context) (billing.Summary, error) {
	return s.dashboard, s.failWith
}

func (s *stubCustomers) ListProfiles(context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	for n := range s.profiles {
		out = append(out, model.Profile{Name: n})
	}
	return out, nil
}

func (s *stubCustomers) AddProfile(_ context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if s.profiles[name] {
		return "", customer.ErrProfileExists
	}
	s.profiles[name] = true
	return name, nil
}

func (s *stubCustomers) DeleteProfile(_ context.Context, name string) error {
	if !s.profiles[name] {
		return customer.ErrProfileNotFound
	}
	delete(s.profiles, name)
	return nil
}

type stubInvoices struct{}

func (stubInvoices) Preview(_ context.Context, id string) (model.SavedInvoice, error) {
	if id != "c1" {
		return model.SavedInvoice{}, billing.ErrCustomerNotFound
	}
	return model.SavedInvoice{ID: "i1", Number: "INV-C1-20240120", CustomerID: id}, nil
}

func (s stubInvoices) Save(ctx context.Context, id string) (model.SavedInvoice, error) {
	return s.Preview(ctx, id)
}

func (stubInvoices) List(context.Context, string) ([]model.SavedInvoice, error) {
	return []model.SavedInvoice{{ID: "i1"}}, nil
}

func (stubInvoices) Get(_ context.Context, id string) (model.SavedInvoice, error) {
	if id != "i1" {
		return model.SavedInvoice{}, invoice.ErrInvoiceNotFound
	}
	return model.SavedInvoice{ID: "i1"}, nil
}

func (stubInvoices) Delete(_ context.Context, id string) error {
	if id != "i1" {
		return invoice.ErrInvoiceNotFound
	}
	return nil
}

type stubRevenue struct {
	from, to time.Time
}

func (s *stubRevenue) InsertBatch(context.Context, []repository.PaymentEvent) error { return nil }

func (s *stubRevenue) MonthlyRevenue(_ context.Context, from, to time.Time) ([]repository.MonthlyRevenue, error) {
	s.from, s.to = from, to
	return []repository.MonthlyRevenue{{Month: from, Revenue: decimal.NewFromInt(50), Payments: 2}}, nil
}

func newTestEcho(t *testing.T) (*echo.Echo, *stubCustomers, *stubRevenue) {
	t.Helper()
	return newTestEchoAt(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
}

func newTestEchoAt(t *testing.T, now time.Time) (*echo.Echo, *stubCustomers, *stubRevenue) {
	t.Helper()
	cs := newStubCustomers()
	rev := &stubRevenue{}
	e := newEcho(&API{
		Customers: cs,
		Invoices:  stubInvoices{},
		Revenue:   rev,
		Clock:     billing.FixedClock(now),
	})
	return e, cs, rev
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validCustomer = `{
	"full_name": "Ana García",
	"service_type": "ROUTER",
	"client_time_type": "monthly",
	"phone_number": "+5491123456789",
	"service_start_date": "2023-01-15",
	"billing_date": "2024-03-25",
	"monthly_price": "25.50",
	"current_payment_status": "pending"
}`

func TestHealthz(t *testing.T) {
	e, _, _ := newTestEcho(t)
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateCustomer(t *testing.T) {
	e, cs, _ := newTestEcho(t)

	rec := do(e, http.MethodPost, "/v1/customers", validCustomer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), cs.created.BillingDate)
	assert.Equal(t, model.PaymentPending, cs.created.CurrentPaymentStatus)
	assert.True(t, decimal.RequireFromString("25.50").Equal(cs.created.MonthlyPrice))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "c1", body["id"])
}

func TestWireDates_StayCivilOutsideUTC(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	e, cs, _ := newTestEchoAt(t, time.Date(2024, 1, 31, 1, 0, 0, 0, tehran))

	body := strings.Replace(validCustomer, `"2024-03-25"`, `"2024-01-31"`, 1)
	rec := do(e, http.MethodPost, "/v1/customers", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, cs.created.BillingDate)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), cs.created.ServiceStartDate)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), billing.NextBillingDate(cs.created.BillingDate))

	rec = do(e, http.MethodPost, "/v1/customers/c1/payments", `{"date":"2024-01-31","amount":25.5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, want, cs.payment.Date)
}

func TestCreateCustomer_BadInput(t *testing.T) {
	e, cs, _ := newTestEcho(t)

	cases := map[string]string{
		"malformed json": `{"full_name":`,
		"bad service":    strings.Replace(validCustomer, `"ROUTER"`, `"FIBER"`, 1),
		"bad date":       strings.Replace(validCustomer, `"2024-03-25"`, `"25/03/2024"`, 1),
		"bad status":     strings.Replace(validCustomer, `"pending"`, `"due_soon"`, 1),
		"short name":     strings.Replace(validCustomer, `"Ana García"`, `"Al"`, 1),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/v1/customers", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	cs.failWith = billing.ErrInvalidAmount
	rec := do(e, http.MethodPost, "/v1/customers", validCustomer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerNotFound(t *testing.T) {
	e, _, _ := newTestEcho(t)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/customers/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/v1/customers/nope", validCustomer).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/v1/customers/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/customers/nope/invoice", "").Code)
}

func TestListCustomers_Filters(t *testing.T) {
	e, cs, _ := newTestEcho(t)

	rec := do(e, http.MethodGet, "/v1/customers?status=due_soon&q=ana&profile=none", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, billing.Filter{Status: billing.DisplayDueSoon, Search: "ana", Profile: "none"}, cs.filter)

	rec = do(e, http.MethodGet, "/v1/customers?status=all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, billing.Filter{}, cs.filter)

	rec = do(e, http.MethodGet, "/v1/customers?status=late", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayments(t *testing.T) {
	e, cs, _ := newTestEcho(t)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/customers", validCustomer).Code)

	rec := do(e, http.MethodPost, "/v1/customers/c1/payments", `{"date":"2024-03-10","amount":25.5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), cs.payment.Date)

	var body struct {
		Customer struct {
			BillingDate time.Time `json:"billing_date"`
			Status      string    `json:"status"`
		} `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "paid", body.Customer.Status)
	assert.Equal(t, time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC), body.Customer.BillingDate)

	rec = do(e, http.MethodPost, "/v1/customers/c1/payments", `{"date":"2024-03-10","amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/customers/c1/payments", `{"amount":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/v1/customers/c1/payments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/customers/c9/payments", "").Code)

	assert.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/v1/customers/c1/payments/p1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/v1/customers/c1/payments/p9", "").Code)
}

func TestInvoices(t *testing.T) {
	e, _, _ := newTestEcho(t)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/customers/c1/invoice", "").Code)
	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/customers/c1/invoice", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/invoices?customer_id=c1", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/invoices/i1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/invoices/i2", "").Code)
	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/v1/invoices/i1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/v1/invoices/i2", "").Code)
}

func TestProfiles(t *testing.T) {
	e, _, _ := newTestEcho(t)

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/profiles", `{"name":"North"}`).Code)
	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/v1/profiles", `{"name":"North"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/profiles", `{"name":""}`).Code)

	rec := do(e, http.MethodGet, "/v1/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "North")

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/v1/profiles/North", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/v1/profiles/North", "").Code)
}

func TestDashboard_InternalErrorHidesDetails(t *testing.T) {
	e, cs, _ := newTestEcho(t)

	cs.dashboard = billing.Summary{TotalCustomers: 3}
	rec := do(e, http.MethodGet, "/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_customers":3`)

	cs.failWith = errors.New("connection reset")
	rec = do(e, http.MethodGet, "/v1/dashboard", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestRevenueReport(t *testing.T) {
	e, _, rev := newTestEcho(t)

	rec := do(e, http.MethodGet, "/v1/reports/revenue", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), rev.from)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), rev.to)

	rec = do(e, http.MethodGet, "/v1/reports/revenue?from=2024-01&to=2024-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rev.from)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/reports/revenue?from=2024-13", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/reports/revenue?from=2024-05&to=2024-01", "").Code)
}
