package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a profile lookup has no match.
var ErrNotFound = errors.New("profile not found")

// Repository persists customer and admin profiles.
type Repository interface {
	CreateCustomer(ctx context.Context, c Customer) error
	CreateAdmin(ctx context.Context, a Admin) error
	FindCustomer(ctx context.Context, id string) (Customer, error)
	FindAdmin(ctx context.Context, id string) (Admin, error)
	CountByUser(ctx context.Context, userID string) (customers, admins int, err error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateCustomer(ctx context.Context, c Customer) error {
	return r.insert(ctx, `INSERT INTO customers (id, user_id, created_at) VALUES ($1, $2, $3)`, c.ID, c.UserID, c.CreatedAt)
}

func (r *PostgresRepository) CreateAdmin(ctx context.Context, a Admin) error {
	return r.insert(ctx, `INSERT INTO admins (id, user_id, created_at) VALUES ($1, $2, $3)`, a.ID, a.UserID, a.CreatedAt)
}

func (r *PostgresRepository) insert(ctx context.Context, query, id, userID string, createdAt time.Time) error {
	pid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, pid, uid, createdAt.UTC())
	return err
}

// FindCustomer fetches a customer profile by identifier.
func (r *PostgresRepository) FindCustomer(ctx context.Context, id string) (Customer, error) {
	pid, userID, createdAt, err := r.find(ctx, `SELECT id, user_id, created_at FROM customers WHERE id = $1`, id)
	if err != nil {
		return Customer{}, err
	}
	return Customer{ID: pid, UserID: userID, CreatedAt: createdAt}, nil
}

// FindAdmin fetches an admin profile by identifier.
func (r *PostgresRepository) FindAdmin(ctx context.Context, id string) (Admin, error) {
	pid, userID, createdAt, err := r.find(ctx, `SELECT id, user_id, created_at FROM admins WHERE id = $1`, id)
	if err != nil {
		return Admin{}, err
	}
	return Admin{ID: pid, UserID: userID, CreatedAt: createdAt}, nil
}

func (r *PostgresRepository) find(ctx context.Context, query, id string) (string, string, time.Time, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return "", "", time.Time{}, ErrNotFound
	}
	var (
		rowID, userID uuid.UUID
		createdAt     time.Time
	)
	if err := r.db.QueryRow(ctx, query, pid).Scan(&rowID, &userID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", time.Time{}, ErrNotFound
		}
		return "", "", time.Time{}, err
	}
	return rowID.String(), userID.String(), createdAt.UTC(), nil
}

// CountByUser counts the customer and admin profiles pointing at userID.
func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (int, int, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, 0, nil
	}
	var customers, admins int
	err = r.db.QueryRow(ctx, `SELECT (SELECT COUNT(*) FROM customers WHERE user_id = $1),
        (SELECT COUNT(*) FROM admins WHERE user_id = $1)`, uid).Scan(&customers, &admins)
	return customers, admins, err
}

// DeleteByUser removes every profile pointing at userID.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM customers WHERE user_id = $1`, uid); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM admins WHERE user_id = $1`, uid); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteAll removes every profile.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE customers, admins`)
	return err
}
