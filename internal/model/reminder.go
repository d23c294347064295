package model

type ReminderKind string

const (
	ReminderDueSoon ReminderKind = "due_soon"
	ReminderOverdue ReminderKind = "overdue"
)

func (k ReminderKind) String() string { return string(k) }

func (k ReminderKind) Valid() bool {
	return k == ReminderDueSoon || k == ReminderOverdue
}

// Reminder is the body POSTed to a notification provider.
type Reminder struct {
	CustomerID string       `json:"customer_id"`
	Phone      string       `json:"phone"`
	Text       string       `json:"text"`
	Kind       ReminderKind `json:"kind"`
}
