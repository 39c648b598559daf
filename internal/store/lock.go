package store

import (
	"context"
	"crypto/subtle"
	"sync"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
)

type LockOutcome string

const (
	OutcomeLocked        LockOutcome = "locked"
	OutcomeUnlocked      LockOutcome = "unlocked"
	OutcomeOpened        LockOutcome = "opened"
	OutcomeNeedsPin      LockOutcome = "needs_pin"
	OutcomeNeedsPinSetup LockOutcome = "needs_pin_setup"
	OutcomeDenied        LockOutcome = "denied"
)

type LockResult struct {
	Outcome LockOutcome `json:"outcome"`
	ChatID  string      `json:"chatId,omitempty"`
	Locked  bool        `json:"locked"`
}

// LockTarget is the chat state a LockController acts on.
type LockTarget interface {
	IsLocked(chatID string) (locked, known bool)
	SetLocked(ctx context.Context, chatID string, locked bool) error
}

type pinMode int

const (
	pinNone pinMode = iota
	pinSetup
	pinVerify
)

type pendingAction int

const (
	actionToggle pendingAction = iota
	actionUnlock
	actionOpen
)

// LockController runs the PIN prompts for locked chats and the app lock.
// At most one prompt is active; a new prompt replaces the previous one.
type LockController struct {
	userID   string
	chats    LockTarget
	profiles ProfileService
	log      zerolog.Logger

	mu        sync.Mutex
	mode      pinMode
	action    pendingAction
	chatID    string
	appLocked bool
}

func NewLockController(userID string, chats LockTarget, profiles ProfileService, log zerolog.Logger) *LockController {
	return &LockController{
		userID:   userID,
		chats:    chats,
		profiles: profiles,
		log:      log.With().Str("component", "lock_controller").Str("user_id", userID).Logger(),
	}
}

// ValidPin reports whether pin is exactly four ASCII digits.
func ValidPin(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// ToggleLock locks an unlocked chat directly. Unlocking asks for the PIN, and
// without a stored PIN the user is asked to create one first.
func (l *LockController) ToggleLock(ctx context.Context, chatID string) (LockResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.toggleLocked(ctx, chatID)
}

func (l *LockController) toggleLocked(ctx context.Context, chatID string) (LockResult, error) {
	locked, known := l.chats.IsLocked(chatID)
	if !known {
		return LockResult{}, ErrUnknownChat
	}
	pin, err := l.storedPin(ctx)
	if err != nil {
		return LockResult{}, err
	}
	if pin == "" {
		l.prompt(pinSetup, actionToggle, chatID)
		return LockResult{Outcome: OutcomeNeedsPinSetup, ChatID: chatID, Locked: locked}, nil
	}
	if locked {
		l.prompt(pinVerify, actionUnlock, chatID)
		return LockResult{Outcome: OutcomeNeedsPin, ChatID: chatID, Locked: true}, nil
	}
	if err := l.chats.SetLocked(ctx, chatID, true); err != nil {
		return LockResult{}, err
	}
	l.clearPrompt()
	return LockResult{Outcome: OutcomeLocked, ChatID: chatID, Locked: true}, nil
}

// OpenChat asks for the PIN when the chat is locked.
func (l *LockController) OpenChat(chatID string) (LockResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	locked, known := l.chats.IsLocked(chatID)
	if !known {
		return LockResult{}, ErrUnknownChat
	}
	if locked {
		l.prompt(pinVerify, actionOpen, chatID)
		return LockResult{Outcome: OutcomeNeedsPin, ChatID: chatID, Locked: true}, nil
	}
	return LockResult{Outcome: OutcomeOpened, ChatID: chatID}, nil
}

// SubmitPin answers the active prompt. In setup mode the PIN is stored and
// the remembered toggle is attempted once more.
func (l *LockController) SubmitPin(ctx context.Context, pin string) (LockResult, error) {
	if !ValidPin(pin) {
		return LockResult{}, ErrInvalidPin
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.mode {
	case pinSetup:
		chatID := l.chatID
		if !l.profiles.UpdateProfile(ctx, l.userID, models.ProfileUpdate{ChatPin: &pin}) {
			return LockResult{}, ErrLockFailed
		}
		l.clearPrompt()
		l.log.Info().Str("chat_id", chatID).Msg("chat pin created")
		return l.toggleLocked(ctx, chatID)
	case pinVerify:
		stored, err := l.storedPin(ctx)
		if err != nil {
			return LockResult{}, err
		}
		if !pinMatches(stored, pin) {
			return LockResult{Outcome: OutcomeDenied, ChatID: l.chatID, Locked: true}, nil
		}
		chatID, action := l.chatID, l.action
		if action == actionOpen {
			l.clearPrompt()
			return LockResult{Outcome: OutcomeOpened, ChatID: chatID, Locked: true}, nil
		}
		if err := l.chats.SetLocked(ctx, chatID, false); err != nil {
			return LockResult{}, err
		}
		l.clearPrompt()
		return LockResult{Outcome: OutcomeUnlocked, ChatID: chatID}, nil
	default:
		return LockResult{}, ErrNoPinPrompt
	}
}

// Cancel dismisses the active prompt.
func (l *LockController) Cancel() {
	l.mu.Lock()
	l.clearPrompt()
	l.mu.Unlock()
}

// Lock engages the app lock.
func (l *LockController) Lock() {
	l.mu.Lock()
	l.appLocked = true
	l.mu.Unlock()
}

// Unlock releases the app lock. Without a stored PIN any attempt succeeds.
func (l *LockController) Unlock(ctx context.Context, pin string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored, err := l.storedPin(ctx)
	if err != nil {
		return false
	}
	if stored != "" && !pinMatches(stored, pin) {
		return false
	}
	l.appLocked = false
	return true
}

func (l *LockController) AppLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appLocked
}

func (l *LockController) storedPin(ctx context.Context) (string, error) {
	p, ok := l.profiles.GetOwnProfile(ctx, l.userID)
	if !ok {
		return "", ErrRequestFailed
	}
	return p.ChatPin(), nil
}

func (l *LockController) prompt(mode pinMode, action pendingAction, chatID string) {
	l.mode, l.action, l.chatID = mode, action, chatID
}

func (l *LockController) clearPrompt() {
	l.mode, l.action, l.chatID = pinNone, actionToggle, ""
}

func pinMatches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
