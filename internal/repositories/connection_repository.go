package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vibechat-service/internal/models"
)

var (
	ErrRequestNotFound  = errors.New("connection request not found")
	ErrConnectionExists = errors.New("connection already exists")
)

const connectionColumns = `id, requester_id, receiver_id, status, created_at`

// ConnectionRepository abstracts connection requests between users.
type ConnectionRepository interface {
	CreateRequest(ctx context.Context, requesterID, receiverID string) (models.ConnectionRow, error)
	ListPendingIncoming(ctx context.Context, userID string) ([]models.ConnectionRow, error)
	ListFriends(ctx context.Context, userID string) ([]models.ProfileRow, error)
	AcceptRequest(ctx context.Context, requestID, receiverID string) (models.ConnectionRow, string, error)
	RejectRequest(ctx context.Context, requestID, receiverID string) error
	ListConnectedWithoutChat(ctx context.Context, userID string) ([]string, error)
}

// ConnectionRepo is a sqlx implementation of ConnectionRepository.
type ConnectionRepo struct {
	db *sqlx.DB
}

// NewConnectionRepo constructs a ConnectionRepo.
func NewConnectionRepo(db *sqlx.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

// CreateRequest inserts a pending request. Any existing edge between the pair,
// in either direction, is reported as ErrConnectionExists.
func (r *ConnectionRepo) CreateRequest(ctx context.Context, requesterID, receiverID string) (models.ConnectionRow, error) {
	var row models.ConnectionRow
	err := r.db.QueryRowxContext(ctx, `INSERT INTO connections (requester_id, receiver_id, status)
        SELECT $1, $2, 'pending'
        WHERE NOT EXISTS (SELECT 1 FROM connections WHERE requester_id=$2 AND receiver_id=$1)
        RETURNING `+connectionColumns, requesterID, receiverID).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return models.ConnectionRow{}, ErrConnectionExists
	}
	return row, err
}

// ListPendingIncoming returns pending requests addressed to the user.
func (r *ConnectionRepo) ListPendingIncoming(ctx context.Context, userID string) ([]models.ConnectionRow, error) {
	var rows []models.ConnectionRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+connectionColumns+` FROM connections
        WHERE receiver_id=$1 AND status='pending'
        ORDER BY created_at DESC`, userID)
	return rows, err
}

// ListFriends returns the profiles of users with an accepted connection to userID.
func (r *ConnectionRepo) ListFriends(ctx context.Context, userID string) ([]models.ProfileRow, error) {
	var rows []models.ProfileRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+profileColumns+` FROM connections c
        JOIN profiles p ON p.id = CASE WHEN c.requester_id = $1 THEN c.receiver_id ELSE c.requester_id END
        WHERE c.status = 'accepted' AND (c.requester_id = $1 OR c.receiver_id = $1)
        ORDER BY p.username`, userID)
	return rows, err
}

// AcceptRequest marks the request accepted and creates the pair's 1:1 chat in
// the same transaction. Only the receiver may accept a pending request.
func (r *ConnectionRepo) AcceptRequest(ctx context.Context, requestID, receiverID string) (models.ConnectionRow, string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ConnectionRow{}, "", err
	}
	defer tx.Rollback()

	var row models.ConnectionRow
	err = tx.QueryRowxContext(ctx, `UPDATE connections SET status='accepted'
        WHERE id=$1 AND receiver_id=$2 AND status='pending'
        RETURNING `+connectionColumns, requestID, receiverID).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ConnectionRow{}, "", ErrRequestNotFound
	}
	if err != nil {
		return models.ConnectionRow{}, "", err
	}

	chatID, err := ensureDirectChat(ctx, tx, row.RequesterID, row.ReceiverID)
	if err != nil {
		return models.ConnectionRow{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return models.ConnectionRow{}, "", err
	}
	return row, chatID, nil
}

// RejectRequest moves a pending request to the terminal rejected state.
func (r *ConnectionRepo) RejectRequest(ctx context.Context, requestID, receiverID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE connections SET status='rejected'
        WHERE id=$1 AND receiver_id=$2 AND status='pending'`, requestID, receiverID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListConnectedWithoutChat returns peers connected to userID that have no 1:1 chat yet.
func (r *ConnectionRepo) ListConnectedWithoutChat(ctx context.Context, userID string) ([]string, error) {
	var peers []string
	err := r.db.SelectContext(ctx, &peers, `SELECT CASE WHEN c.requester_id = $1 THEN c.receiver_id ELSE c.requester_id END::text AS peer_id
        FROM connections c
        WHERE c.status = 'accepted' AND (c.requester_id = $1 OR c.receiver_id = $1)
        AND NOT EXISTS (
            SELECT 1 FROM chats ch
            JOIN chat_participants pa ON pa.chat_id = ch.id AND pa.user_id = c.requester_id
            JOIN chat_participants pb ON pb.chat_id = ch.id AND pb.user_id = c.receiver_id
            WHERE ch.is_group = FALSE
        )`, userID)
	return peers, err
}
