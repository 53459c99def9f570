package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
)

var (
	// ErrNotFound indicates the customer does not exist.
	ErrNotFound = errors.New("customer not found")
)

// Storage-level enforcement points for registration uniqueness; the
// eligibility check is only the fast path.
const (
	UniqueEmailConstraint    = "customers_email_key"
	UniqueIdentityConstraint = "customers_identity_key"
)

// Repository provides read access to customers and their reference data, and
// staged mutations for the unit of work.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByUserID(ctx context.Context, userID string) (*Customer, error)
	Candidates(ctx context.Context) ([]Candidate, error)

	Title(ctx context.Context, id uuid.UUID) (*Title, error)
	Address(ctx context.Context, id uuid.UUID) (*Address, error)
	Shop(ctx context.Context, id uuid.UUID) (*Shop, error)
	Doctor(ctx context.Context, id uuid.UUID) (*Doctor, error)

	InsertOp(c Customer) db.Op
	InsertAddressOp(a Address) db.Op
	UpdateOp(c Customer) db.Op
	UpdateAddressOp(a Address) db.Op
	SetActiveOp(id uuid.UUID) db.Op
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `id, user_id, title_id, first_name, last_name, email, mobile,
       date_of_birth, address_id, shop_id, doctor_id, active, activation_hash, created_on`

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

func (r *repository) GetByUserID(ctx context.Context, userID string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id = $1`, userID)
	return scanCustomer(row)
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.UserID, &c.TitleID, &c.FirstName, &c.LastName, &c.Email, &c.Mobile,
		&c.DateOfBirth, &c.AddressID, &c.ShopID, &c.DoctorID, &c.Active, &c.ActivationHash, &c.CreatedOn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Candidates(ctx context.Context) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, `SELECT email, first_name, last_name, date_of_birth, doctor_id FROM customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.Email, &c.FirstName, &c.LastName, &c.DateOfBirth, &c.DoctorID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Title(ctx context.Context, id uuid.UUID) (*Title, error) {
	var t Title
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM titles WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) Address(ctx context.Context, id uuid.UUID) (*Address, error) {
	var a Address
	err := r.pool.QueryRow(ctx, `SELECT id, line1, line2, city, postcode, created_on FROM addresses WHERE id = $1`, id).
		Scan(&a.ID, &a.Line1, &a.Line2, &a.City, &a.Postcode, &a.CreatedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Shop(ctx context.Context, id uuid.UUID) (*Shop, error) {
	var s Shop
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone FROM shops WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) Doctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := r.pool.QueryRow(ctx, `SELECT id, name, surgery FROM doctors WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.Surgery)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) InsertOp(c Customer) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO customers (id, user_id, title_id, first_name, last_name, email, mobile,
			                       date_of_birth, address_id, shop_id, doctor_id, active, activation_hash, created_on)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			c.ID, c.UserID, c.TitleID, c.FirstName, c.LastName, c.Email, c.Mobile,
			c.DateOfBirth, c.AddressID, c.ShopID, c.DoctorID, c.Active, c.ActivationHash, c.CreatedOn,
		)
		return err
	}
}

func (r *repository) InsertAddressOp(a Address) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO addresses (id, line1, line2, city, postcode, created_on)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.Line1, a.Line2, a.City, a.Postcode, a.CreatedOn,
		)
		return err
	}
}

func (r *repository) UpdateOp(c Customer) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE customers
			SET title_id = $2, first_name = $3, last_name = $4, email = $5, mobile = $6,
			    date_of_birth = $7, shop_id = $8, doctor_id = $9
			WHERE id = $1`,
			c.ID, c.TitleID, c.FirstName, c.LastName, c.Email, c.Mobile,
			c.DateOfBirth, c.ShopID, c.DoctorID,
		)
		return err
	}
}

func (r *repository) UpdateAddressOp(a Address) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE addresses SET line1 = $2, line2 = $3, city = $4, postcode = $5 WHERE id = $1`,
			a.ID, a.Line1, a.Line2, a.City, a.Postcode,
		)
		return err
	}
}

func (r *repository) SetActiveOp(id uuid.UUID) db.Op {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE customers SET active = TRUE WHERE id = $1`, id)
		return err
	}
}
