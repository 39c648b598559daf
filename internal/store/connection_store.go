package store

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
)

type ConnectionStoreConfig struct {
	UserID      string
	Connections ConnectionService
	Blocks      BlockService
	Profiles    ProfileService
	// ChatsChanged runs after an accept or repair created chats.
	ChatsChanged func(ctx context.Context)
	Log          zerolog.Logger
}

// ConnectionStore holds a user's friends, incoming requests and blocks.
type ConnectionStore struct {
	userID       string
	conns        ConnectionService
	blocks       BlockService
	profiles     ProfileService
	chatsChanged func(ctx context.Context)
	log          zerolog.Logger

	mu              sync.Mutex
	friends         []models.Profile
	requests        []models.ConnectionRequest
	requestProfiles map[string]models.Profile
	blocked         []models.Profile
}

func NewConnectionStore(cfg ConnectionStoreConfig) *ConnectionStore {
	return &ConnectionStore{
		userID:          cfg.UserID,
		conns:           cfg.Connections,
		blocks:          cfg.Blocks,
		profiles:        cfg.Profiles,
		chatsChanged:    cfg.ChatsChanged,
		log:             cfg.Log.With().Str("component", "connection_store").Str("user_id", cfg.UserID).Logger(),
		requestProfiles: map[string]models.Profile{},
	}
}

// Refresh reloads friends, pending requests and blocks. Accepted
// connections that are missing their 1:1 chat get one first.
func (s *ConnectionStore) Refresh(ctx context.Context) {
	repaired := s.conns.RepairMissingChats(ctx, s.userID)

	friends := s.conns.GetFriends(ctx, s.userID)
	requests := s.conns.GetPendingRequests(ctx, s.userID)
	blocked := s.blocks.GetBlockedUsers(ctx, s.userID)

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.FromUserID)
	}
	profiles := fetchProfiles(ctx, s.profiles, ids)

	s.mu.Lock()
	s.friends = friends
	s.requests = requests
	s.requestProfiles = profiles
	s.blocked = blocked
	s.mu.Unlock()

	if repaired > 0 {
		s.log.Info().Int("chats", repaired).Msg("repaired missing direct chats")
		s.notifyChats(ctx)
	}
}

// SearchUsers finds other users by username. A blank query returns nothing.
func (s *ConnectionStore) SearchUsers(ctx context.Context, query string) []models.Profile {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Profile{}
	}
	found := s.profiles.SearchProfiles(ctx, query, s.userID)
	out := make([]models.Profile, 0, len(found))
	for _, p := range found {
		if p.ID != s.userID {
			out = append(out, p)
		}
	}
	return out
}

func (s *ConnectionStore) SendRequest(ctx context.Context, toUserID string) error {
	if toUserID == "" || toUserID == s.userID {
		return ErrSelfRequest
	}
	if s.blocks.IsBlocked(ctx, s.userID, toUserID) {
		return ErrBlocked
	}
	if !s.conns.SendRequest(ctx, s.userID, toUserID) {
		return ErrRequestFailed
	}
	return nil
}

// AcceptRequest accepts an incoming request. The backend creates the 1:1
// chat in the same transaction; the chat list is refreshed afterwards.
func (s *ConnectionStore) AcceptRequest(ctx context.Context, requestID string) (string, error) {
	_, chatID, ok := s.conns.AcceptRequest(ctx, requestID, s.userID)
	if !ok {
		return "", ErrRequestFailed
	}
	s.removeRequest(requestID)
	s.Refresh(ctx)
	s.notifyChats(ctx)
	return chatID, nil
}

func (s *ConnectionStore) RejectRequest(ctx context.Context, requestID string) error {
	if !s.conns.RejectRequest(ctx, requestID, s.userID) {
		return ErrRequestFailed
	}
	s.removeRequest(requestID)
	return nil
}

func (s *ConnectionStore) BlockUser(ctx context.Context, userID string) error {
	if userID == "" || userID == s.userID {
		return ErrSelfRequest
	}
	if !s.blocks.BlockUser(ctx, s.userID, userID) {
		return ErrRequestFailed
	}
	blocked := s.blocks.GetBlockedUsers(ctx, s.userID)
	friends := s.conns.GetFriends(ctx, s.userID)

	s.mu.Lock()
	s.blocked = blocked
	s.friends = friends
	s.mu.Unlock()
	return nil
}

func (s *ConnectionStore) UnblockUser(ctx context.Context, userID string) error {
	if !s.blocks.UnblockUser(ctx, s.userID, userID) {
		return ErrRequestFailed
	}
	s.mu.Lock()
	kept := s.blocked[:0:0]
	for _, p := range s.blocked {
		if p.ID != userID {
			kept = append(kept, p)
		}
	}
	s.blocked = kept
	s.mu.Unlock()
	return nil
}

func (s *ConnectionStore) BlockedUsers() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Profile{}, s.blocked...)
}

func (s *ConnectionStore) Friends() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Profile{}, s.friends...)
}

// FriendIDs returns the ids of accepted connections.
func (s *ConnectionStore) FriendIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.friends))
	for _, p := range s.friends {
		ids = append(ids, p.ID)
	}
	return ids
}

// PendingRequest is an incoming request with the requester's profile when it
// could be loaded.
type PendingRequest struct {
	models.ConnectionRequest
	From *models.Profile `json:"from,omitempty"`
}

func (s *ConnectionStore) Requests() []PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingRequest, 0, len(s.requests))
	for _, r := range s.requests {
		pr := PendingRequest{ConnectionRequest: r}
		if p, ok := s.requestProfiles[r.FromUserID]; ok {
			pr.From = &p
		}
		out = append(out, pr)
	}
	return out
}

func (s *ConnectionStore) removeRequest(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.requests {
		if r.ID == requestID {
			s.requests = append(s.requests[:i:i], s.requests[i+1:]...)
			return
		}
	}
}

func (s *ConnectionStore) notifyChats(ctx context.Context) {
	if s.chatsChanged != nil {
		s.chatsChanged(ctx)
	}
}
