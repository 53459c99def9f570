package reminders

import (
	"time"

	"github.com/google/uuid"
)

// Reminder is a scheduled repeat-prescription nudge for a customer. Sent is
// tri-state: nil for legacy rows written before the flag existed, false while
// the reminder is pending, true once the dispatcher has sent it. There is no
// transition back from sent.
type Reminder struct {
	ID         uuid.UUID `json:"reminder_id" db:"id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	SendTime   time.Time `json:"send_time" db:"send_time"`
	Sent       *bool     `json:"sent" db:"sent"`
	CreatedOn  time.Time `json:"created_on" db:"created_on"`
}

// ReminderOrder links one reminder to one order. It carries its own identity
// so the link can be removed without touching either parent.
type ReminderOrder struct {
	ID         uuid.UUID `json:"reminder_order_id" db:"id"`
	ReminderID uuid.UUID `json:"reminder_id" db:"reminder_id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
}

// DueReminder is a pending reminder joined with the contact details the
// dispatcher needs.
type DueReminder struct {
	ID         uuid.UUID `json:"reminder_id" db:"id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	SendTime   time.Time `json:"send_time" db:"send_time"`
	Email      string    `json:"email" db:"email"`
	FirstName  string    `json:"first_name" db:"first_name"`
}
