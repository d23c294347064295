package customer

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmoiron/sqlx"
)

type fakeCustomers struct {
	mu   sync.Mutex
	rows map[string]model.Customer
	pays *fakePayments
}

func newFakeCustomers(pays *fakePayments) *fakeCustomers {
	return &fakeCustomers{rows: map[string]model.Customer{}, pays: pays}
}

func (f *fakeCustomers) load(c model.Customer) *model.Customer {
	c.PaymentHistory = f.pays.of(c.ID)
	return &c
}

func (f *fakeCustomers) Get(_ context.Context, id string) (*model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return f.load(c), nil
}

func (f *fakeCustomers) GetForUpdate(ctx context.Context, _ *sqlx.Tx, id string) (*model.Customer, error) {
	return f.Get(ctx, id)
}

func (f *fakeCustomers) List(context.Context) ([]model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Customer, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, *f.load(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (f *fakeCustomers) Insert(_ context.Context, _ *sqlx.Tx, c model.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ProfileName != nil && *c.ProfileName == "ghost" {
		return repository.ErrUnknownReference
	}
	c.PaymentHistory = nil
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCustomers) Update(_ context.Context, _ *sqlx.Tx, c model.Customer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[c.ID]; !ok {
		return false, nil
	}
	c.PaymentHistory = nil
	f.rows[c.ID] = c
	return true, nil
}

func (f *fakeCustomers) UpdateBilling(_ context.Context, _ *sqlx.Tx, id string, billingDate time.Time, status model.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.rows[id]
	c.BillingDate = billingDate
	c.CurrentPaymentStatus = status
	f.rows[id] = c
	return nil
}

func (f *fakeCustomers) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

type fakePayments struct {
	mu   sync.Mutex
	rows []model.PaymentRecord
}

func (f *fakePayments) of(customerID string) []model.PaymentRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.PaymentRecord{}
	for _, p := range f.rows {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePayments) Insert(_ context.Context, _ *sqlx.Tx, p model.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakePayments) Delete(_ context.Context, _ *sqlx.Tx, customerID, paymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.rows {
		if p.ID == paymentID && p.CustomerID == customerID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePayments) ListByCustomer(_ context.Context, customerID string) ([]model.PaymentRecord, error) {
	return f.of(customerID), nil
}

type fakeProfiles struct {
	names map[string]bool
}

func (f *fakeProfiles) List(context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	for n := range f.names {
		out = append(out, model.Profile{Name: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProfiles) Insert(_ context.Context, name string) error {
	if f.names[name] {
		return repository.ErrDuplicate
	}
	f.names[name] = true
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, name string) (bool, error) {
	ok := f.names[name]
	delete(f.names, name)
	return ok, nil
}

type fakeOutbox struct {
	envs []model.Envelope
}

func (f *fakeOutbox) Insert(_ context.Context, _ *sqlx.Tx, ev model.OutboxEvent) error {
	var env model.Envelope
	if err := json.Unmarshal(ev.Payload, &env); err != nil {
		return err
	}
	f.envs = append(f.envs, env)
	return nil
}

func (f *fakeOutbox) InsertEnvelope(_ context.Context, _ *sqlx.Tx, _, _, _ string, env model.Envelope) error {
	f.envs = append(f.envs, env)
	return nil
}

type countingDashboard struct {
	cached      *billing.Summary
	invalidated int
}

func (d *countingDashboard) Get(context.Context, time.Time) (billing.Summary, bool) {
	if d.cached == nil {
		return billing.Summary{}, false
	}
	return *d.cached, true
}

func (d *countingDashboard) Set(_ context.Context, _ time.Time, s billing.Summary) { d.cached = &s }

func (d *countingDashboard) Invalidate(context.Context) {
	d.cached = nil
	d.invalidated++
}
