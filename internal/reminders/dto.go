package reminders

// AddReminderRequest schedules a reminder against an existing order.
type AddReminderRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	OrderID    string `json:"order_id" validate:"required,uuid"`
}
