package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
)

type CallStoreConfig struct {
	UserID   string
	Calls    CallService
	Profiles ProfileService
	Log      zerolog.Logger
}

// ActiveCall is the call currently shown on screen. Calls carry no media;
// only their log entries are persisted.
type ActiveCall struct {
	models.Call
	StartedAt time.Time `json:"startedAt"`
}

// CallStore keeps the call history and the single active call.
type CallStore struct {
	userID   string
	calls    CallService
	profiles ProfileService
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	history []models.Call
	peers   map[string]models.Profile
	active  *ActiveCall
}

func NewCallStore(cfg CallStoreConfig) *CallStore {
	return &CallStore{
		userID:   cfg.UserID,
		calls:    cfg.Calls,
		profiles: cfg.Profiles,
		log:      cfg.Log.With().Str("component", "call_store").Str("user_id", cfg.UserID).Logger(),
		now:      time.Now,
		peers:    map[string]models.Profile{},
	}
}

// Refresh reloads the call history and the profiles of its peers.
func (s *CallStore) Refresh(ctx context.Context) {
	history := s.calls.GetCallHistory(ctx, s.userID)

	s.mu.Lock()
	var missing []string
	seen := map[string]struct{}{}
	for _, c := range history {
		peer := c.Peer(s.userID)
		if _, ok := s.peers[peer]; ok {
			continue
		}
		if _, ok := seen[peer]; ok {
			continue
		}
		seen[peer] = struct{}{}
		missing = append(missing, peer)
	}
	s.mu.Unlock()

	profiles := fetchProfiles(ctx, s.profiles, missing)

	s.mu.Lock()
	s.history = history
	for id, p := range profiles {
		s.peers[id] = p
	}
	s.mu.Unlock()
}

// StartCall logs an outgoing call and makes it active.
func (s *CallStore) StartCall(ctx context.Context, receiverID string, callType models.CallType) (ActiveCall, error) {
	if receiverID == "" || receiverID == s.userID {
		return ActiveCall{}, ErrInvalidParticipant
	}
	if !callType.Valid() {
		return ActiveCall{}, ErrInvalidType
	}
	s.mu.Lock()
	busy := s.active != nil
	s.mu.Unlock()
	if busy {
		return ActiveCall{}, ErrCallInProgress
	}

	call := models.Call{
		CallerID:   s.userID,
		ReceiverID: receiverID,
		Type:       callType,
		Status:     models.CallOutgoing,
		Timestamp:  s.now(),
	}
	if logged, ok := s.calls.LogCall(ctx, call); ok {
		call = logged
	} else {
		call.ID = TempIDPrefix + uuid.NewString()
	}

	active := ActiveCall{Call: call, StartedAt: s.now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ActiveCall{}, ErrCallInProgress
	}
	s.active = &active
	if !strings.HasPrefix(call.ID, TempIDPrefix) {
		s.history = append([]models.Call{call}, s.history...)
	}
	return active, nil
}

// EndCall logs the active call as completed with its measured duration.
func (s *CallStore) EndCall(ctx context.Context) (models.Call, error) {
	s.mu.Lock()
	active := s.active
	s.active = nil
	s.mu.Unlock()
	if active == nil {
		return models.Call{}, ErrNoActiveCall
	}

	call := models.Call{
		CallerID:   active.CallerID,
		ReceiverID: active.ReceiverID,
		Type:       active.Type,
		Status:     models.CallCompleted,
		Timestamp:  s.now(),
		Duration:   int(s.now().Sub(active.StartedAt) / time.Second),
	}
	logged, ok := s.calls.LogCall(ctx, call)
	if !ok {
		s.log.Warn().Str("call_id", active.ID).Msg("completed call was not logged")
		return call, nil
	}
	s.mu.Lock()
	s.history = append([]models.Call{logged}, s.history...)
	s.mu.Unlock()
	return logged, nil
}

// AcceptCall makes a call from the history active.
func (s *CallStore) AcceptCall(ctx context.Context, callID string) (ActiveCall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ActiveCall{}, ErrCallInProgress
	}
	call, ok := s.findLocked(callID)
	if !ok {
		return ActiveCall{}, ErrUnknownCall
	}
	active := ActiveCall{Call: call, StartedAt: s.now()}
	s.active = &active
	return active, nil
}

// RejectCall logs a call from the history as missed.
func (s *CallStore) RejectCall(ctx context.Context, callID string) (models.Call, error) {
	s.mu.Lock()
	call, ok := s.findLocked(callID)
	s.mu.Unlock()
	if !ok {
		return models.Call{}, ErrUnknownCall
	}

	missed := models.Call{
		CallerID:   call.CallerID,
		ReceiverID: call.ReceiverID,
		Type:       call.Type,
		Status:     models.CallMissed,
		Timestamp:  s.now(),
	}
	logged, ok := s.calls.LogCall(ctx, missed)
	if !ok {
		return models.Call{}, ErrRequestFailed
	}
	s.mu.Lock()
	s.history = append([]models.Call{logged}, s.history...)
	s.mu.Unlock()
	return logged, nil
}

func (s *CallStore) Active() (ActiveCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ActiveCall{}, false
	}
	return *s.active, true
}

func (s *CallStore) History() []models.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Call{}, s.history...)
}

// Peers returns the profiles of call peers loaded so far.
func (s *CallStore) Peers() map[string]models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Profile, len(s.peers))
	for id, p := range s.peers {
		out[id] = p
	}
	return out
}

func (s *CallStore) findLocked(callID string) (models.Call, bool) {
	for _, c := range s.history {
		if c.ID == callID {
			return c, true
		}
	}
	return models.Call{}, false
}
