package orders

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
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("order not found")
)

// Repository provides read access to orders and staged status mutations.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Current(ctx context.Context, customerID uuid.UUID) (*Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]Order, int, error)
	Lines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	SubmitOp(id uuid.UUID, at time.Time) db.Op
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, customer_id, status, created_on, submitted_on`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *repository) Current(ctx context.Context, customerID uuid.UUID) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1 AND status = $2
		ORDER BY created_on DESC
		LIMIT 1`, customerID, StatusInBasket)
	return scanOrder(row)
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &o.CreatedOn, &o.SubmittedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1
		ORDER BY created_on DESC
		LIMIT $2 OFFSET $3`, customerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.CreatedOn, &o.SubmittedOn); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *repository) Lines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.order_id, l.drug_id, d.name, l.quantity
		FROM order_lines l
		JOIN drugs d ON d.id = l.drug_id
		WHERE l.order_id = $1
		ORDER BY d.name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.DrugID, &l.DrugName, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) SubmitOp(id uuid.UUID, at time.Time) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE orders SET status = $2, submitted_on = $3 WHERE id = $1`,
			id, StatusSubmitted, at)
		return err
	}
}
