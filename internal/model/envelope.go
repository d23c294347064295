package model

import "time"

// EventsTopic is the Kafka topic the outbox rows are routed to.
const EventsTopic = "billing.events"

type EventType string

const (
	EventPaymentRecorded EventType = "payment.recorded"
	EventPaymentDeleted  EventType = "payment.deleted"
	EventInvoiceSaved    EventType = "invoice.saved"
	EventInvoiceDeleted  EventType = "invoice.deleted"
)

func (t EventType) String() string { return string(t) }

// Envelope is the billing event payload published to Kafka (via Debezium outbox SMT).
type Envelope struct {
	ID         string         `json:"id"` // event ULID
	Type       EventType      `json:"type"`
	CustomerID string         `json:"customer_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payment    *PaymentRecord `json:"payment,omitempty"`
	Invoice    *SavedInvoice  `json:"invoice,omitempty"`
}
