package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
)

var (
	// ErrNotFound indicates the reminder does not exist.
	ErrNotFound = errors.New("reminder not found")
)

// Repository provides read access to reminders and staged mutations for the
// unit of work.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Reminder, error)
	LinksForReminder(ctx context.Context, reminderID uuid.UUID) ([]ReminderOrder, error)
	DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]DueReminder, error)
	MarkSent(ctx context.Context, id uuid.UUID) error

	InsertOp(r Reminder) db.Op
	InsertLinkOp(link ReminderOrder) db.Op
	DeleteLinkOp(id uuid.UUID) db.Op
	DeleteOp(id uuid.UUID) db.Op
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	var rem Reminder
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, send_time, sent, created_on
		FROM reminders WHERE id = $1`, id).
		Scan(&rem.ID, &rem.CustomerID, &rem.SendTime, &rem.Sent, &rem.CreatedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rem, nil
}

func (r *repository) LinksForReminder(ctx context.Context, reminderID uuid.UUID) ([]ReminderOrder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reminder_id, order_id
		FROM reminder_orders WHERE reminder_id = $1`, reminderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReminderOrder
	for rows.Next() {
		var link ReminderOrder
		if err := rows.Scan(&link.ID, &link.ReminderID, &link.OrderID); err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

// DueBefore returns pending reminders whose send time has passed, joined with
// the contact details needed to deliver them. Rows with a NULL sent flag are
// treated as pending.
func (r *repository) DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]DueReminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.customer_id, r.send_time, c.email, c.first_name
		FROM reminders r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.send_time <= $1 AND COALESCE(r.sent, FALSE) = FALSE
		ORDER BY r.send_time
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DueReminder
	for rows.Next() {
		var d DueReminder
		if err := rows.Scan(&d.ID, &d.CustomerID, &d.SendTime, &d.Email, &d.FirstName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reminders SET sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertOp(rem Reminder) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reminders (id, customer_id, send_time, sent, created_on)
			VALUES ($1, $2, $3, $4, $5)`,
			rem.ID, rem.CustomerID, rem.SendTime, rem.Sent, rem.CreatedOn)
		return err
	}
}

func (r *repository) InsertLinkOp(link ReminderOrder) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reminder_orders (id, reminder_id, order_id)
			VALUES ($1, $2, $3)`,
			link.ID, link.ReminderID, link.OrderID)
		return err
	}
}

func (r *repository) DeleteLinkOp(id uuid.UUID) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM reminder_orders WHERE id = $1`, id)
		return err
	}
}

func (r *repository) DeleteOp(id uuid.UUID) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
		return err
	}
}
