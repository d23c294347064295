package model

import "time"

// OutboxEvent is one row of the outbox table. Debezium's outbox router reads
// new rows and publishes Payload to Topic.
type OutboxEvent struct {
	ID          int64     `db:"id"`
	Aggregate   string    `db:"aggregate"`    // "customer" | "invoice"
	AggregateID string    `db:"aggregate_id"` // customer.ID / invoice.ID
	Topic       string    `db:"topic"`
	Payload     []byte    `db:"payload"`
	Attempts    int       `db:"attempts"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
