package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vibechat-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// AuthRepository stores credentials.
type AuthRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, username string) (models.AuthUserRow, error)
	GetUserByEmail(ctx context.Context, email string) (models.AuthUserRow, error)
}

// AuthRepo is a sqlx implementation of AuthRepository.
type AuthRepo struct {
	db *sqlx.DB
}

// NewAuthRepo constructs an AuthRepo.
func NewAuthRepo(db *sqlx.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

// CreateUser inserts the credentials row and its initial profile in one transaction.
func (r *AuthRepo) CreateUser(ctx context.Context, email, passwordHash, username string) (models.AuthUserRow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.AuthUserRow{}, err
	}
	defer tx.Rollback()

	var user models.AuthUserRow
	err = tx.QueryRowxContext(ctx, `INSERT INTO auth_users (email, password_hash) VALUES ($1, $2)
        RETURNING id, email, password_hash, created_at`, email, passwordHash).StructScan(&user)
	if isUniqueViolation(err) {
		return models.AuthUserRow{}, ErrEmailTaken
	}
	if err != nil {
		return models.AuthUserRow{}, err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO profiles (id, username, email, status) VALUES ($1, $2, $3, 'online')`,
		user.ID, username, email); err != nil {
		if isUniqueViolation(err) {
			return models.AuthUserRow{}, ErrUsernameTaken
		}
		return models.AuthUserRow{}, err
	}
	return user, tx.Commit()
}

// GetUserByEmail looks up credentials by email.
func (r *AuthRepo) GetUserByEmail(ctx context.Context, email string) (models.AuthUserRow, error) {
	var user models.AuthUserRow
	err := r.db.GetContext(ctx, &user, `SELECT id, email, password_hash, created_at FROM auth_users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AuthUserRow{}, ErrUserNotFound
	}
	return user, err
}
