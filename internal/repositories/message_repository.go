package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"vibechat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, chat_id, sender_id, client_id, content, type, media_url, reply_to_id, reactions, created_at`

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, row models.MessageRow) error
	ListRecentMessages(ctx context.Context, chatID string, limit int) ([]models.MessageRow, error)
	GetMessageByID(ctx context.Context, id string) (models.MessageRow, error)
	GetMessageByClientID(ctx context.Context, chatID, clientID string) (models.MessageRow, error)
	LatestMessages(ctx context.Context, chatIDs []string) ([]models.MessageRow, error)
	ToggleReaction(ctx context.Context, chatID, messageID, userID, emoji string) (models.MessageRow, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage inserts a message. The insert trigger publishes it on the change feed.
func (r *MessageRepo) CreateMessage(ctx context.Context, row models.MessageRow) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO messages (chat_id, sender_id, client_id, content, type, media_url, reply_to_id, reactions)
        VALUES (:chat_id, :sender_id, :client_id, :content, :type, :media_url, :reply_to_id, :reactions)`, row)
	return err
}

// ListRecentMessages returns up to limit messages, newest first.
func (r *MessageRepo) ListRecentMessages(ctx context.Context, chatID string, limit int) ([]models.MessageRow, error) {
	var rows []models.MessageRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+messageColumns+` FROM messages
        WHERE chat_id=$1
        ORDER BY created_at DESC
        LIMIT $2`, chatID, limit)
	return rows, err
}

// GetMessageByID fetches a single message row.
func (r *MessageRepo) GetMessageByID(ctx context.Context, id string) (models.MessageRow, error) {
	var row models.MessageRow
	err := r.db.GetContext(ctx, &row, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageRow{}, ErrMessageNotFound
	}
	return row, err
}

// GetMessageByClientID fetches the row written for a client correlation id.
func (r *MessageRepo) GetMessageByClientID(ctx context.Context, chatID, clientID string) (models.MessageRow, error) {
	var row models.MessageRow
	err := r.db.GetContext(ctx, &row, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 AND client_id=$2`, chatID, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageRow{}, ErrMessageNotFound
	}
	return row, err
}

// LatestMessages returns the newest message of each given chat.
func (r *MessageRepo) LatestMessages(ctx context.Context, chatIDs []string) ([]models.MessageRow, error) {
	if len(chatIDs) == 0 {
		return nil, nil
	}
	var rows []models.MessageRow
	err := r.db.SelectContext(ctx, &rows, `SELECT DISTINCT ON (chat_id) `+messageColumns+` FROM messages
        WHERE chat_id = ANY($1)
        ORDER BY chat_id, created_at DESC`, pq.Array(chatIDs))
	return rows, err
}

// ToggleReaction applies a user's reaction under a row lock and returns the updated message.
func (r *MessageRepo) ToggleReaction(ctx context.Context, chatID, messageID, userID, emoji string) (models.MessageRow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.MessageRow{}, err
	}
	defer tx.Rollback()

	var row models.MessageRow
	err = tx.GetContext(ctx, &row, `SELECT `+messageColumns+` FROM messages WHERE id=$1 AND chat_id=$2 FOR UPDATE`, messageID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageRow{}, ErrMessageNotFound
	}
	if err != nil {
		return models.MessageRow{}, err
	}

	row.Reactions = models.ToggleReaction(row.Reactions, userID, emoji)
	if _, err := tx.ExecContext(ctx, `UPDATE messages SET reactions=$2 WHERE id=$1`, messageID, row.Reactions); err != nil {
		return models.MessageRow{}, err
	}
	return row, tx.Commit()
}
