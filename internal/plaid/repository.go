package plaid

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrItemNotFound is returned when a user has no item with the given id.
var ErrItemNotFound = errors.New("plaid item not found")

// Repository persists exchanged items.
type Repository interface {
	Save(ctx context.Context, item Item) error
	FindByItemID(ctx context.Context, userID, itemID string) (Item, error)
	ListByUser(ctx context.Context, userID string) ([]Item, error)
	DeleteAll(ctx context.Context) error
}

// PostgresRepository stores items in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed item repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save upserts an item keyed by its Plaid item id.
func (r *PostgresRepository) Save(ctx context.Context, item Item) error {
	id, err := uuid.Parse(item.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(item.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO plaid_items (id, user_id, item_id, access_token, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (item_id) DO UPDATE SET access_token = EXCLUDED.access_token, user_id = EXCLUDED.user_id`,
		id, userID, item.ItemID, item.AccessToken, item.CreatedAt.UTC())
	return err
}

// FindByItemID fetches one of the user's items.
func (r *PostgresRepository) FindByItemID(ctx context.Context, userID, itemID string) (Item, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Item{}, ErrItemNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, user_id, item_id, access_token, created_at FROM plaid_items
        WHERE user_id = $1 AND item_id = $2`, uid, itemID)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	return item, err
}

// ListByUser returns the user's items, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Item, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []Item{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, item_id, access_token, created_at FROM plaid_items
        WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteAll removes every item.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE plaid_items`)
	return err
}

func scanItem(row pgx.Row) (Item, error) {
	var (
		item       Item
		id, userID uuid.UUID
		createdAt  time.Time
	)
	if err := row.Scan(&id, &userID, &item.ItemID, &item.AccessToken, &createdAt); err != nil {
		return Item{}, err
	}
	item.ID = id.String()
	item.UserID = userID.String()
	item.CreatedAt = createdAt.UTC()
	return item, nil
}

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string]Item
}

// NewMemoryRepository builds an in-memory item store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string]Item)}
}

func (r *memoryRepository) Save(_ context.Context, item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[item.ItemID]; ok {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	}
	r.items[item.ItemID] = item
	return nil
}

func (r *memoryRepository) FindByItemID(_ context.Context, userID, itemID string) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := []Item{}
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *memoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string]Item)
	return nil
}
