package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash BYTEA NOT NULL,
        phone TEXT NOT NULL DEFAULT '',
        first_name TEXT NOT NULL DEFAULT '',
        last_name TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL DEFAULT '',
        type TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'active',
        is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
        customer_id TEXT NOT NULL DEFAULT '',
        admin_id TEXT NOT NULL DEFAULT '',
        is_customer BOOLEAN NOT NULL DEFAULT FALSE,
        is_admin BOOLEAN NOT NULL DEFAULT FALSE,
        is_online BOOLEAN NOT NULL DEFAULT FALSE,
        fcms JSONB NOT NULL DEFAULT '[]',
        image TEXT NOT NULL DEFAULT '',
        longitude DOUBLE PRECISION,
        latitude DOUBLE PRECISION,
        google_id TEXT NOT NULL DEFAULT '',
        facebook_id TEXT NOT NULL DEFAULT '',
        twitter_id TEXT NOT NULL DEFAULT '',
        last_login TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS users_type_created_idx ON users (type, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS customers (
        id UUID PRIMARY KEY,
        user_id UUID NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS admins (
        id UUID PRIMARY KEY,
        user_id UUID NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS plaid_items (
        id UUID PRIMARY KEY,
        user_id UUID NOT NULL,
        item_id TEXT NOT NULL UNIQUE,
        access_token TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS plaid_items_user_idx ON plaid_items (user_id)`,
}

// Migrate creates the tables the repositories expect. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
