package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"vibechat-service/internal/models"
)

var ErrVibeNotFound = errors.New("vibe not found")

const vibeColumns = `id, user_id, type, note, media_url, storage_key, created_at, expires_at`

// VibeRepository stores vibes and their views.
type VibeRepository interface {
	CreateVibe(ctx context.Context, row models.VibeRow) (models.VibeRow, error)
	GetVibe(ctx context.Context, vibeID string) (models.VibeRow, error)
	ListActiveVibes(ctx context.Context, userIDs []string, now time.Time) ([]models.VibeRow, error)
	RecordView(ctx context.Context, vibeID, viewerID string) (bool, error)
	ListViewers(ctx context.Context, vibeID string) ([]models.VibeViewerRow, error)
	PurgeExpiredVibes(ctx context.Context, now time.Time) ([]string, error)
}

// VibeRepo is a sqlx implementation of VibeRepository.
type VibeRepo struct {
	db *sqlx.DB
}

// NewVibeRepo constructs a VibeRepo.
func NewVibeRepo(db *sqlx.DB) *VibeRepo {
	return &VibeRepo{db: db}
}

// CreateVibe inserts a vibe row.
func (r *VibeRepo) CreateVibe(ctx context.Context, row models.VibeRow) (models.VibeRow, error) {
	var out models.VibeRow
	err := r.db.QueryRowxContext(ctx, `INSERT INTO vibes (user_id, type, note, media_url, storage_key, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+vibeColumns,
		row.UserID, row.Type, row.Note, row.MediaURL, row.StorageKey, row.ExpiresAt).StructScan(&out)
	return out, err
}

// GetVibe fetches a vibe by id.
func (r *VibeRepo) GetVibe(ctx context.Context, vibeID string) (models.VibeRow, error) {
	var row models.VibeRow
	err := r.db.GetContext(ctx, &row, `SELECT `+vibeColumns+` FROM vibes WHERE id=$1`, vibeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VibeRow{}, ErrVibeNotFound
	}
	return row, err
}

// ListActiveVibes returns vibes of the given users that expire after now, newest first.
func (r *VibeRepo) ListActiveVibes(ctx context.Context, userIDs []string, now time.Time) ([]models.VibeRow, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []models.VibeRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+vibeColumns+` FROM vibes
        WHERE user_id = ANY($1) AND expires_at > $2
        ORDER BY created_at DESC`, pq.Array(userIDs), now)
	return rows, err
}

// RecordView stores a (vibe, viewer) pair once. The view is only written when
// the vibe is unexpired and the viewer has an accepted connection with its
// owner; the result reports whether that held.
func (r *VibeRepo) RecordView(ctx context.Context, vibeID, viewerID string) (bool, error) {
	var allowed bool
	err := r.db.QueryRowxContext(ctx, `WITH allowed AS (
            SELECT v.id FROM vibes v
            WHERE v.id = $1 AND v.expires_at > NOW() AND v.user_id <> $2
              AND EXISTS (
                SELECT 1 FROM connections c
                WHERE c.status = 'accepted'
                  AND ((c.requester_id = v.user_id AND c.receiver_id = $2)
                    OR (c.requester_id = $2 AND c.receiver_id = v.user_id))
              )
        ), recorded AS (
            INSERT INTO vibe_views (vibe_id, viewer_id)
            SELECT id, $2 FROM allowed
            ON CONFLICT (vibe_id, viewer_id) DO NOTHING
        )
        SELECT EXISTS (SELECT 1 FROM allowed)`, vibeID, viewerID).Scan(&allowed)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// ListViewers returns the viewers of a vibe with their profile fields.
func (r *VibeRepo) ListViewers(ctx context.Context, vibeID string) ([]models.VibeViewerRow, error) {
	var rows []models.VibeViewerRow
	err := r.db.SelectContext(ctx, &rows, `SELECT v.viewer_id, v.created_at, p.username, p.avatar_url, p.full_name
        FROM vibe_views v
        JOIN profiles p ON p.id = v.viewer_id
        WHERE v.vibe_id=$1
        ORDER BY v.created_at DESC`, vibeID)
	return rows, err
}

// PurgeExpiredVibes deletes vibes expired at now and returns their storage keys.
func (r *VibeRepo) PurgeExpiredVibes(ctx context.Context, now time.Time) ([]string, error) {
	var keys []string
	err := r.db.SelectContext(ctx, &keys, `DELETE FROM vibes WHERE expires_at <= $1 RETURNING storage_key`, now)
	return keys, err
}
