package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"vibechat-service/internal/models"
)

// StatusRepository stores 24h status posts.
type StatusRepository interface {
	CreateStatus(ctx context.Context, row models.StatusRow) error
	ListActiveStatuses(ctx context.Context, userIDs []string, now time.Time) ([]models.StatusRow, error)
	PurgeExpiredStatuses(ctx context.Context, now time.Time) (int64, error)
}

// StatusRepo is a sqlx implementation of StatusRepository.
type StatusRepo struct {
	db *sqlx.DB
}

// NewStatusRepo constructs a StatusRepo.
func NewStatusRepo(db *sqlx.DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// CreateStatus inserts a status; expires_at takes the column default.
func (r *StatusRepo) CreateStatus(ctx context.Context, row models.StatusRow) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO statuses (user_id, type, content, media_url) VALUES ($1, $2, $3, $4)`,
		row.UserID, row.Type, row.Content, row.MediaURL)
	return err
}

// ListActiveStatuses returns unexpired statuses of the given users, newest first.
func (r *StatusRepo) ListActiveStatuses(ctx context.Context, userIDs []string, now time.Time) ([]models.StatusRow, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []models.StatusRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, user_id, type, content, media_url, created_at, expires_at FROM statuses
        WHERE user_id = ANY($1) AND expires_at > $2
        ORDER BY created_at DESC`, pq.Array(userIDs), now)
	return rows, err
}

// PurgeExpiredStatuses deletes statuses expired at now.
func (r *StatusRepo) PurgeExpiredStatuses(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM statuses WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
