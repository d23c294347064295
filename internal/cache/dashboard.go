package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dashboard caches the customer summary for one calendar day. A summary
// computed yesterday is never served today.
type Dashboard interface {
	Get(ctx context.Context, day time.Time) (billing.Summary, bool)
	Set(ctx context.Context, day time.Time, s billing.Summary)
	Invalidate(ctx context.Context)
}

type entry struct {
	Day     string          `json:"day"`
	Summary billing.Summary `json:"summary"`
}

type RedisDashboard struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisDashboard(rdb *redis.Client, ttl time.Duration) *RedisDashboard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisDashboard{rdb: rdb, key: "billing:dashboard", ttl: ttl}
}

var _ Dashboard = (*RedisDashboard)(nil)

func (d *RedisDashboard) Get(ctx context.Context, day time.Time) (billing.Summary, bool) {
	raw, err := d.rdb.Get(ctx, d.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("dashboard cache get", zap.Error(err))
		}
		return billing.Summary{}, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Day != day.Format(time.DateOnly) {
		return billing.Summary{}, false
	}
	return e.Summary, true
}

func (d *RedisDashboard) Set(ctx context.Context, day time.Time, s billing.Summary) {
	raw, err := json.Marshal(entry{Day: day.Format(time.DateOnly), Summary: s})
	if err != nil {
		return
	}
	if err := d.rdb.Set(ctx, d.key, raw, d.ttl).Err(); err != nil {
		logger.Log.Warn("dashboard cache set", zap.Error(err))
	}
}

func (d *RedisDashboard) Invalidate(ctx context.Context) {
	if err := d.rdb.Del(ctx, d.key).Err(); err != nil {
		logger.Log.Warn("dashboard cache invalidate", zap.Error(err))
	}
}

// Nop never caches.
type Nop struct{}

func (Nop) Get(context.Context, time.Time) (billing.Summary, bool) { return billing.Summary{}, false }
func (Nop) Set(context.Context, time.Time, billing.Summary)        {}
func (Nop) Invalidate(context.Context)                             {}
