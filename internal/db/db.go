package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// MessageInsertChannel is the NOTIFY channel fed by the messages trigger. The
// payload carries only the message id and chat id; listeners load the row.
const MessageInsertChannel = "messages_insert"

// Connect opens the database and applies migrations.
func Connect(ctx context.Context, dsn string, log zerolog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Int("statements", len(migrations)).Msg("database migrations applied")
	return db, nil
}

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	`CREATE TABLE IF NOT EXISTS auth_users (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS profiles (
        id UUID PRIMARY KEY REFERENCES auth_users(id),
        username TEXT NOT NULL UNIQUE,
        email TEXT,
        full_name TEXT,
        avatar_url TEXT,
        phone TEXT,
        age INT,
        gender TEXT,
        bio TEXT,
        status TEXT DEFAULT 'online',
        last_seen TIMESTAMPTZ,
        chat_pin TEXT CHECK (chat_pin IS NULL OR chat_pin ~ '^[0-9]{4}$'),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS connections (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        requester_id UUID NOT NULL REFERENCES profiles(id),
        receiver_id UUID NOT NULL REFERENCES profiles(id),
        status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (requester_id, receiver_id)
    );`,
	`CREATE TABLE IF NOT EXISTS chats (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        name TEXT,
        description TEXT,
        icon_url TEXT,
        is_group BOOLEAN NOT NULL DEFAULT FALSE,
        admin_id UUID REFERENCES profiles(id),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS chat_participants (
        chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
        user_id UUID NOT NULL REFERENCES profiles(id),
        is_locked BOOLEAN NOT NULL DEFAULT FALSE,
        joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (chat_id, user_id)
    );`,
	`CREATE TABLE IF NOT EXISTS messages (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
        sender_id UUID NOT NULL REFERENCES profiles(id),
        client_id UUID UNIQUE,
        content TEXT NOT NULL DEFAULT '',
        type TEXT NOT NULL DEFAULT 'text' CHECK (type IN ('text', 'image', 'video', 'audio')),
        media_url TEXT,
        reply_to_id UUID REFERENCES messages(id),
        reactions JSONB NOT NULL DEFAULT '[]'::jsonb,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE INDEX IF NOT EXISTS messages_chat_created_idx ON messages (chat_id, created_at DESC);`,
	`CREATE OR REPLACE FUNCTION notify_message_insert() RETURNS trigger AS $$
    BEGIN
        PERFORM pg_notify('` + MessageInsertChannel + `', json_build_object('id', NEW.id, 'chat_id', NEW.chat_id)::text);
        RETURN NEW;
    END;
    $$ LANGUAGE plpgsql;`,
	`DROP TRIGGER IF EXISTS messages_notify ON messages;`,
	`CREATE TRIGGER messages_notify AFTER INSERT ON messages
        FOR EACH ROW EXECUTE FUNCTION notify_message_insert();`,
	`CREATE TABLE IF NOT EXISTS calls (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        caller_id UUID NOT NULL REFERENCES profiles(id),
        receiver_id UUID NOT NULL REFERENCES profiles(id),
        type TEXT NOT NULL CHECK (type IN ('voice', 'video')),
        status TEXT NOT NULL CHECK (status IN ('incoming', 'outgoing', 'missed', 'completed')),
        duration INT NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS statuses (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        user_id UUID NOT NULL REFERENCES profiles(id),
        type TEXT NOT NULL CHECK (type IN ('text', 'image', 'video')),
        content TEXT,
        media_url TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        expires_at TIMESTAMPTZ NOT NULL DEFAULT NOW() + INTERVAL '24 hours'
    );`,
	`CREATE TABLE IF NOT EXISTS vibes (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        user_id UUID NOT NULL REFERENCES profiles(id),
        type TEXT NOT NULL CHECK (type IN ('image', 'video')),
        note TEXT,
        media_url TEXT NOT NULL,
        storage_key TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        expires_at TIMESTAMPTZ NOT NULL
    );`,
	`CREATE INDEX IF NOT EXISTS vibes_expires_idx ON vibes (expires_at);`,
	`CREATE TABLE IF NOT EXISTS vibe_views (
        vibe_id UUID NOT NULL REFERENCES vibes(id) ON DELETE CASCADE,
        viewer_id UUID NOT NULL REFERENCES profiles(id),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (vibe_id, viewer_id)
    );`,
	`CREATE TABLE IF NOT EXISTS blocks (
        blocker_id UUID NOT NULL REFERENCES profiles(id),
        blocked_id UUID NOT NULL REFERENCES profiles(id),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (blocker_id, blocked_id)
    );`,
}

func runMigrations(ctx context.Context, db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
