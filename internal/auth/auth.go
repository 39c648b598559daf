package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type SessionEventKind string

const (
	SignedIn  SessionEventKind = "signed_in"
	SignedOut SessionEventKind = "signed_out"
)

// SessionEvent is emitted whenever a token is issued or revoked.
type SessionEvent struct {
	Kind      SessionEventKind
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator owns credentials and session tokens.
type Authenticator struct {
	users  repositories.AuthRepository
	tokens *TokenService
	log    zerolog.Logger
	now    func() time.Time
	cost   int

	mu      sync.Mutex
	revoked map[string]time.Time
	subs    map[int]func(SessionEvent)
	nextSub int
}

func NewAuthenticator(users repositories.AuthRepository, tokens *TokenService, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		users:   users,
		tokens:  tokens,
		log:     log.With().Str("component", "auth").Logger(),
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
		revoked: map[string]time.Time{},
		subs:    map[int]func(SessionEvent){},
	}
}

// SignUp registers a user with a generated username and signs them in.
func (a *Authenticator) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Session{}, err
	}
	if len(password) < MinPasswordLength {
		return models.Session{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return models.Session{}, fmt.Errorf("hash password: %w", err)
	}
	username := "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	user, err := a.users.CreateUser(ctx, email, string(hash), username)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return models.Session{}, ErrEmailTaken
		}
		return models.Session{}, fmt.Errorf("create user: %w", err)
	}
	a.log.Info().Str("user_id", user.ID).Msg("user signed up")
	return a.issue(user)
}

// SignIn checks the password and issues a session token.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.Session{}, ErrInvalidCredentials
		}
		return models.Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	return a.issue(user)
}

func (a *Authenticator) issue(user models.AuthUserRow) (models.Session, error) {
	tokenID := uuid.NewString()
	signed, exp, err := a.tokens.Create(user.ID, user.Email, tokenID, a.now())
	if err != nil {
		return models.Session{}, fmt.Errorf("sign token: %w", err)
	}
	a.emit(SessionEvent{Kind: SignedIn, UserID: user.ID, TokenID: tokenID, ExpiresAt: exp})
	return models.Session{UserID: user.ID, Email: user.Email, Token: signed, ExpiresAt: exp}, nil
}

// SignOut revokes the token. Revoking an already revoked token is a no-op.
func (a *Authenticator) SignOut(token string) error {
	claims, err := a.parse(token)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.revoked[claims.ID] = claims.ExpiresAt.Time
	a.mu.Unlock()
	a.emit(SessionEvent{Kind: SignedOut, UserID: claims.Subject, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time})
	return nil
}

// CurrentSession resolves a token to its session.
func (a *Authenticator) CurrentSession(token string) (models.Session, string, error) {
	claims, err := a.parse(token)
	if err != nil {
		return models.Session{}, "", err
	}
	return models.Session{UserID: claims.Subject, Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}, claims.ID, nil
}

func (a *Authenticator) parse(token string) (*Claims, error) {
	claims, err := a.tokens.Parse(token, a.now())
	if err != nil {
		return nil, ErrInvalidToken
	}
	a.mu.Lock()
	_, revoked := a.revoked[claims.ID]
	a.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// OnSessionChange registers fn for sign-in and sign-out events.
func (a *Authenticator) OnSessionChange(fn func(SessionEvent)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}

// PruneRevoked forgets revocations of tokens that expired before now.
func (a *Authenticator) PruneRevoked(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for id, exp := range a.revoked {
		if !exp.After(now) {
			delete(a.revoked, id)
			n++
		}
	}
	return n
}

func (a *Authenticator) emit(ev SessionEvent) {
	a.mu.Lock()
	ids := make([]int, 0, len(a.subs))
	for id := range a.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(SessionEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, a.subs[id])
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
