package db

import (
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
)

// NewClickHouseConnection opens the analytics store, e.g.
// clickhouse://default:@localhost:9000/billing?dial_timeout=5s&compress=true
func NewClickHouseConnection(dsn string, opts PoolOpts) (*sqlx.DB, error) {
	if _, err := clickhouse.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("parse ClickHouse DSN: %w", err)
	}
	return open("clickhouse", dsn, opts, 3*time.Second)
}
