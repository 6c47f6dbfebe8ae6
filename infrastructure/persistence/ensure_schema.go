package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"propgen/infrastructure/logger"
)

var schemaDDL = []struct {
	name string
	ddl  string
}{
	{"profiles", `CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL UNIQUE,
		display_name TEXT,
		company TEXT,
		avatar_url TEXT,
		logo_url TEXT,
		plan TEXT NOT NULL DEFAULT 'free',
		usage_count INTEGER NOT NULL DEFAULT 0,
		monthly_limit INTEGER NOT NULL DEFAULT 10,
		language TEXT NOT NULL DEFAULT 'en',
		facebook_connected BOOLEAN NOT NULL DEFAULT FALSE,
		facebook_page_id TEXT,
		instagram_connected BOOLEAN NOT NULL DEFAULT FALSE,
		instagram_account_id TEXT,
		tiktok_connected BOOLEAN NOT NULL DEFAULT FALSE,
		tiktok_username TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`},
	{"properties", `CREATE TABLE IF NOT EXISTS properties (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		source_url TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		price TEXT NOT NULL,
		address TEXT NOT NULL,
		images TEXT[] NOT NULL DEFAULT '{}',
		agent JSONB,
		generated_images JSONB NOT NULL DEFAULT '{}'::jsonb,
		captions JSONB NOT NULL DEFAULT '{}'::jsonb,
		hashtags TEXT[] NOT NULL DEFAULT '{}',
		publish_state JSONB NOT NULL DEFAULT '{}'::jsonb,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`},
	{"idx_properties_user_created", `CREATE INDEX IF NOT EXISTS idx_properties_user_created ON properties (user_id, created_at DESC)`},
	{"oauth_states", `CREATE TABLE IF NOT EXISTS oauth_states (
		state TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`},
	{"idx_oauth_states_expires_at", `CREATE INDEX IF NOT EXISTS idx_oauth_states_expires_at ON oauth_states (expires_at)`},
	{"oauth_tokens", `CREATE TABLE IF NOT EXISTS oauth_tokens (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ,
		scopes TEXT NOT NULL DEFAULT '',
		account_id TEXT,
		account_name TEXT,
		token_type TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, platform)
	)`},
}

// EnsureSchema creates the tables used by the service if they are missing.
// Safe to call at startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, s := range schemaDDL {
		if _, err := db.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("ensure %s: %w", s.name, err)
		}
	}
	logger.GetLogger().WithField("objects", len(schemaDDL)).Info("database schema ensured")
	return nil
}
