package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no user matches a lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when another user already owns the email.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindOne(ctx context.Context, q Query) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) (User, error)
	Search(ctx context.Context, f SearchFilter) ([]User, int, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	DeleteAll(ctx context.Context) error
}

const userColumns = `id, email, password_hash, phone, first_name, last_name, name, type, status,
        is_email_verified, customer_id, admin_id, is_customer, is_admin, is_online, fcms, image,
        longitude, latitude, google_id, facebook_id, twitter_id, last_login, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	lng, lat := coordinates(user.Location)
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		userID, user.Email, user.PasswordHash, user.Phone, user.FirstName, user.LastName, user.Name, user.Type, user.Status,
		user.IsEmailVerified, user.CustomerID, user.AdminID, user.IsCustomer, user.IsAdmin, user.IsOnline, fcmsOrEmpty(user.FCMs), user.Image,
		lng, lat, user.GoogleID, user.FacebookID, user.TwitterID, user.LastLogin, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	return translate(err)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	return r.FindOne(ctx, Query{ID: id})
}

// FindOne fetches the first user matching every populated field of q.
func (r *PostgresRepository) FindOne(ctx context.Context, q Query) (User, error) {
	if q.empty() {
		return User{}, ErrNotFound
	}
	var (
		where []string
		args  []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if q.ID != "" {
		id, err := uuid.Parse(q.ID)
		if err != nil {
			return User{}, ErrNotFound
		}
		add("id", id)
	}
	if q.Email != "" {
		add("email", q.Email)
	}
	if q.Phone != "" {
		add("phone", q.Phone)
	}
	if q.GoogleID != "" {
		add("google_id", q.GoogleID)
	}
	if q.FacebookID != "" {
		add("facebook_id", q.FacebookID)
	}
	if q.TwitterID != "" {
		add("twitter_id", q.TwitterID)
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+strings.Join(where, " AND ")+` LIMIT 1`, args...)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

// Update overwrites the mutable columns of an existing user.
func (r *PostgresRepository) Update(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return ErrNotFound
	}
	lng, lat := coordinates(user.Location)
	cmd, err := r.db.Exec(ctx, `UPDATE users SET email = $2, password_hash = $3, phone = $4, first_name = $5,
        last_name = $6, name = $7, type = $8, status = $9, is_email_verified = $10, customer_id = $11, admin_id = $12,
        is_customer = $13, is_admin = $14, is_online = $15, fcms = $16, image = $17, longitude = $18, latitude = $19,
        updated_at = $20 WHERE id = $1`,
		userID, user.Email, user.PasswordHash, user.Phone, user.FirstName, user.LastName, user.Name, user.Type, user.Status,
		user.IsEmailVerified, user.CustomerID, user.AdminID, user.IsCustomer, user.IsAdmin, user.IsOnline, fcmsOrEmpty(user.FCMs),
		user.Image, lng, lat, user.UpdatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user and returns the deleted record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	user, err := scanUser(r.db.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

// Search returns one page of users matching f and the total match count.
func (r *PostgresRepository) Search(ctx context.Context, f SearchFilter) ([]User, int, error) {
	var (
		where = []string{"TRUE"}
		args  []any
	)
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	} else if f.ExcludeType != "" {
		args = append(args, f.ExcludeType)
		where = append(where, fmt.Sprintf("type <> $%d", len(args)))
	}
	if f.ExcludeID != "" {
		if id, err := uuid.Parse(f.ExcludeID); err == nil {
			args = append(args, id)
			where = append(where, fmt.Sprintf("id <> $%d", len(args)))
		}
	}
	if f.Keyword != "" {
		args = append(args, "%"+escapeLike(f.Keyword)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", n, n))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]User, 0, max(0, min(f.Limit, total-f.Offset)))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// UpdateLastLogin stamps the user's last successful login.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every user.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE users`)
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user     User
		id       uuid.UUID
		lng, lat *float64
	)
	err := row.Scan(&id, &user.Email, &user.PasswordHash, &user.Phone, &user.FirstName, &user.LastName, &user.Name,
		&user.Type, &user.Status, &user.IsEmailVerified, &user.CustomerID, &user.AdminID, &user.IsCustomer, &user.IsAdmin,
		&user.IsOnline, &user.FCMs, &user.Image, &lng, &lat, &user.GoogleID, &user.FacebookID, &user.TwitterID,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	if lng != nil && lat != nil {
		user.Location = &Location{Type: "Point", Coordinates: []float64{*lng, *lat}}
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

func coordinates(loc *Location) (*float64, *float64) {
	if loc == nil || len(loc.Coordinates) != 2 {
		return nil, nil
	}
	return &loc.Coordinates[0], &loc.Coordinates[1]
}

func fcmsOrEmpty(fcms []FCM) []FCM {
	if fcms == nil {
		return []FCM{}
	}
	return fcms
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
