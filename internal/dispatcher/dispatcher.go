package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jmehdipour/wifi-billing/internal/model"
)

// Attempts is the retry budget per reminder kind.
type Attempts struct {
	DueSoon int // e.g. 2
	Overdue int // e.g. 3
}

var (
	ErrNoHealthy = errors.New("no healthy providers")
	ErrNoAcquire = errors.New("provider not acquired")
)

// Dispatcher spreads reminders round-robin over the healthy providers.
type Dispatcher struct {
	providers         []Provider
	roundRobinCounter atomic.Uint64
	attempts          Attempts
}

func NewDispatcher(provs []Provider, attempts Attempts) *Dispatcher {
	if attempts.Overdue < 1 {
		attempts.Overdue = 3
	}

	if attempts.DueSoon < 1 {
		attempts.DueSoon = 2
	}

	return &Dispatcher{providers: provs, attempts: attempts}
}

func (d *Dispatcher) selectProvider() (Provider, error) {
	healthy := make([]Provider, 0, len(d.providers))
	for _, p := range d.providers {
		if p.Ready() {
			healthy = append(healthy, p)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

func (d *Dispatcher) tryOnce(ctx context.Context, r model.Reminder) error {
	p, err := d.selectProvider()
	if err != nil {
		return err
	}

	if !p.Acquire() {
		return ErrNoAcquire
	}

	return p.Notify(ctx, r)
}

func (d *Dispatcher) maxAttempts(k model.ReminderKind) int {
	if k == model.ReminderOverdue {
		return d.attempts.Overdue
	}
	return d.attempts.DueSoon
}

// Send delivers r, retrying on another provider up to the kind's budget.
func (d *Dispatcher) Send(ctx context.Context, r model.Reminder) error {
	var last error
	for i := 0; i < d.maxAttempts(r.Kind); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := d.tryOnce(ctx, r)
		if err == nil {
			return nil
		}
		last = err
	}

	if last == nil {
		last = fmt.Errorf("send %s reminder failed", r.Kind)
	}

	return last
}
