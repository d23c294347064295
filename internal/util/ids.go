package util

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string (payment records, outbox events).
func NewULID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewUUID generates a random UUID string (customers, saved invoices).
func NewUUID() string {
	return uuid.NewString()
}
