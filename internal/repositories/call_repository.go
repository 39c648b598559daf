package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"vibechat-service/internal/models"
)

// CallRepository stores the call log.
type CallRepository interface {
	CreateCall(ctx context.Context, row models.CallRow) (models.CallRow, error)
	ListCallsForUser(ctx context.Context, userID string) ([]models.CallRow, error)
}

// CallRepo is a sqlx implementation of CallRepository.
type CallRepo struct {
	db *sqlx.DB
}

// NewCallRepo constructs a CallRepo.
func NewCallRepo(db *sqlx.DB) *CallRepo {
	return &CallRepo{db: db}
}

// CreateCall appends a call log row.
func (r *CallRepo) CreateCall(ctx context.Context, row models.CallRow) (models.CallRow, error) {
	var out models.CallRow
	err := r.db.QueryRowxContext(ctx, `INSERT INTO calls (caller_id, receiver_id, type, status, duration)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, caller_id, receiver_id, type, status, duration, created_at`,
		row.CallerID, row.ReceiverID, row.Type, row.Status, row.Duration).StructScan(&out)
	return out, err
}

// ListCallsForUser returns calls the user placed or received, newest first.
func (r *CallRepo) ListCallsForUser(ctx context.Context, userID string) ([]models.CallRow, error) {
	var rows []models.CallRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, caller_id, receiver_id, type, status, duration, created_at FROM calls
        WHERE caller_id=$1 OR receiver_id=$1
        ORDER BY created_at DESC`, userID)
	return rows, err
}
