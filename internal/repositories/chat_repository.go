package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vibechat-service/internal/models"
)

var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrSelfChat      = errors.New("cannot create chat with self")
	ErrTooFewMembers = errors.New("a chat needs at least two participants")
)

// ChatRepository abstracts chat and participant persistence.
type ChatRepository interface {
	ListChatsForUser(ctx context.Context, userID string) ([]models.ChatListRow, error)
	CreateGroup(ctx context.Context, group models.NewGroup) (string, error)
	CreateDirectChat(ctx context.Context, userA, userB string) (string, error)
	SetLocked(ctx context.Context, chatID, userID string, locked bool) error
	TouchChat(ctx context.Context, chatID string) error
	IsParticipant(ctx context.Context, chatID, userID string) (bool, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// ListChatsForUser returns the chats the user participates in together with the
// user's own lock flag and every participant id.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID string) ([]models.ChatListRow, error) {
	query := `SELECT c.id, c.name, c.description, c.icon_url, c.is_group, c.admin_id, c.created_at, c.updated_at,
            me.is_locked,
            ARRAY(SELECT cp.user_id::text FROM chat_participants cp WHERE cp.chat_id = c.id ORDER BY cp.joined_at, cp.user_id) AS participants
        FROM chat_participants me
        JOIN chats c ON c.id = me.chat_id
        WHERE me.user_id = $1
        ORDER BY c.updated_at DESC`
	var rows []models.ChatListRow
	err := r.db.SelectContext(ctx, &rows, query, userID)
	return rows, err
}

// CreateGroup inserts a group chat with the admin and members as participants.
func (r *ChatRepo) CreateGroup(ctx context.Context, group models.NewGroup) (string, error) {
	members := uniqueMembers(group.AdminID, group.MemberIDs)
	if len(members) < 2 {
		return "", ErrTooFewMembers
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var chatID string
	if err := tx.QueryRowxContext(ctx, `INSERT INTO chats (name, description, is_group, admin_id) VALUES ($1, $2, TRUE, $3) RETURNING id`,
		group.Name, nullString(group.Description), group.AdminID).Scan(&chatID); err != nil {
		return "", err
	}
	for _, uid := range members {
		if err := addParticipant(ctx, tx, chatID, uid); err != nil {
			return "", err
		}
	}
	return chatID, tx.Commit()
}

// CreateDirectChat returns the existing 1:1 chat between the users or creates it.
func (r *ChatRepo) CreateDirectChat(ctx context.Context, userA, userB string) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	chatID, err := ensureDirectChat(ctx, tx, userA, userB)
	if err != nil {
		return "", err
	}
	return chatID, tx.Commit()
}

// SetLocked updates the caller's lock flag for a chat.
func (r *ChatRepo) SetLocked(ctx context.Context, chatID, userID string, locked bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chat_participants SET is_locked=$3 WHERE chat_id=$1 AND user_id=$2`, chatID, userID, locked)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}
	return nil
}

// TouchChat bumps the chat's updated_at used for list ordering.
func (r *ChatRepo) TouchChat(ctx context.Context, chatID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chats SET updated_at = NOW() WHERE id=$1`, chatID)
	return err
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// ensureDirectChat finds or creates the 1:1 chat for a pair inside q.
func ensureDirectChat(ctx context.Context, q sqlx.ExtContext, userA, userB string) (string, error) {
	if userA == userB {
		return "", ErrSelfChat
	}
	var chatID string
	err := sqlx.GetContext(ctx, q, &chatID, `SELECT c.id FROM chats c
        JOIN chat_participants pa ON pa.chat_id = c.id AND pa.user_id = $1
        JOIN chat_participants pb ON pb.chat_id = c.id AND pb.user_id = $2
        WHERE c.is_group = FALSE
        LIMIT 1`, userA, userB)
	if err == nil {
		return chatID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	if err := q.QueryRowxContext(ctx, `INSERT INTO chats (is_group) VALUES (FALSE) RETURNING id`).Scan(&chatID); err != nil {
		return "", err
	}
	for _, uid := range []string{userA, userB} {
		if err := addParticipant(ctx, q, chatID, uid); err != nil {
			return "", err
		}
	}
	return chatID, nil
}

func addParticipant(ctx context.Context, q sqlx.ExecerContext, chatID, userID string) error {
	_, err := q.ExecContext(ctx, `INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)
        ON CONFLICT (chat_id, user_id) DO NOTHING`, chatID, userID)
	return err
}

func uniqueMembers(adminID string, memberIDs []string) []string {
	seen := map[string]bool{adminID: true}
	out := []string{adminID}
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
