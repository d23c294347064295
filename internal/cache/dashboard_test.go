package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDashboard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	d := NewRedisDashboard(rdb, time.Minute)
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	_, ok := d.Get(ctx, today)
	assert.False(t, ok)

	s := billing.Summary{
		TotalCustomers:         2,
		ByServiceType:          map[model.ServiceType]int{model.ServiceRouter: 2},
		ByStatus:               map[billing.DisplayStatus]int{billing.DisplayPaid: 2},
		PotentialMonthlyIncome: decimal.RequireFromString("45.50"),
	}
	d.Set(ctx, today, s)

	got, ok := d.Get(ctx, today)
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalCustomers)
	assert.True(t, got.PotentialMonthlyIncome.Equal(s.PotentialMonthlyIncome))

	_, ok = d.Get(ctx, today.AddDate(0, 0, 1))
	assert.False(t, ok, "stale day must miss")

	mr.FastForward(2 * time.Minute)
	_, ok = d.Get(ctx, today)
	assert.False(t, ok, "expired entry must miss")

	d.Set(ctx, today, s)
	d.Invalidate(ctx)
	_, ok = d.Get(ctx, today)
	assert.False(t, ok)
}
