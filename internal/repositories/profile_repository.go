package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vibechat-service/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username taken")
)

const profileColumns = `p.id, p.username, p.email, p.full_name, p.avatar_url, p.phone, p.age, p.gender,
        p.bio, p.status, p.last_seen, p.chat_pin, p.created_at, p.updated_at`

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.ProfileRow, error)
	UpsertProfile(ctx context.Context, row models.ProfileRow) error
	SearchProfiles(ctx context.Context, query string, callerID string, limit int) ([]models.ProfileRow, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetProfile fetches a profile by user id.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (models.ProfileRow, error) {
	var row models.ProfileRow
	err := r.db.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles p WHERE p.id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProfileRow{}, ErrProfileNotFound
	}
	return row, err
}

// UpsertProfile inserts or updates a profile. Nil columns keep their stored value.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, row models.ProfileRow) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO profiles
        (id, username, email, full_name, avatar_url, phone, age, gender, bio, status, chat_pin, updated_at)
        VALUES (:id, :username, :email, :full_name, :avatar_url, :phone, :age, :gender, :bio, :status, :chat_pin, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            username = COALESCE(NULLIF(EXCLUDED.username, ''), profiles.username),
            email = COALESCE(EXCLUDED.email, profiles.email),
            full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
            avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
            phone = COALESCE(EXCLUDED.phone, profiles.phone),
            age = COALESCE(EXCLUDED.age, profiles.age),
            gender = COALESCE(EXCLUDED.gender, profiles.gender),
            bio = COALESCE(EXCLUDED.bio, profiles.bio),
            status = EXCLUDED.status,
            chat_pin = COALESCE(EXCLUDED.chat_pin, profiles.chat_pin),
            updated_at = EXCLUDED.updated_at`, row)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// SearchProfiles matches usernames case-insensitively, excluding the caller and
// anyone in a block relation with the caller in either direction.
func (r *ProfileRepo) SearchProfiles(ctx context.Context, query string, callerID string, limit int) ([]models.ProfileRow, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles p
        WHERE p.username ILIKE $1 AND p.id <> $2
        AND NOT EXISTS (
            SELECT 1 FROM blocks b
            WHERE (b.blocker_id = $2 AND b.blocked_id = p.id)
               OR (b.blocker_id = p.id AND b.blocked_id = $2)
        )
        ORDER BY p.username
        LIMIT $3`
	var rows []models.ProfileRow
	err := r.db.SelectContext(ctx, &rows, q, likePattern(query), callerID, limit)
	return rows, err
}
