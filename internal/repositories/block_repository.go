package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"vibechat-service/internal/models"
)

// BlockRepository stores block relations.
type BlockRepository interface {
	BlockUser(ctx context.Context, blockerID, blockedID string) error
	UnblockUser(ctx context.Context, blockerID, blockedID string) error
	IsBlocked(ctx context.Context, userID, otherID string) (bool, error)
	ListBlocked(ctx context.Context, blockerID string) ([]models.ProfileRow, error)
}

// BlockRepo is a sqlx implementation of BlockRepository.
type BlockRepo struct {
	db *sqlx.DB
}

// NewBlockRepo constructs a BlockRepo.
func NewBlockRepo(db *sqlx.DB) *BlockRepo {
	return &BlockRepo{db: db}
}

// BlockUser records blockerID blocking blockedID.
func (r *BlockRepo) BlockUser(ctx context.Context, blockerID, blockedID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO blocks (blocker_id, blocked_id) VALUES ($1, $2)
        ON CONFLICT (blocker_id, blocked_id) DO NOTHING`, blockerID, blockedID)
	return err
}

// UnblockUser removes one direction of a block.
func (r *BlockRepo) UnblockUser(ctx context.Context, blockerID, blockedID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE blocker_id=$1 AND blocked_id=$2`, blockerID, blockedID)
	return err
}

// IsBlocked reports a block in either direction.
func (r *BlockRepo) IsBlocked(ctx context.Context, userID, otherID string) (bool, error) {
	var blocked bool
	err := r.db.GetContext(ctx, &blocked, `SELECT EXISTS(SELECT 1 FROM blocks
        WHERE (blocker_id=$1 AND blocked_id=$2) OR (blocker_id=$2 AND blocked_id=$1))`, userID, otherID)
	return blocked, err
}

// ListBlocked returns the profiles blockerID has blocked.
func (r *BlockRepo) ListBlocked(ctx context.Context, blockerID string) ([]models.ProfileRow, error) {
	var rows []models.ProfileRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+profileColumns+` FROM blocks b
        JOIN profiles p ON p.id = b.blocked_id
        WHERE b.blocker_id=$1
        ORDER BY b.created_at DESC`, blockerID)
	return rows, err
}
