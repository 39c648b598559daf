package services

import (
	"context"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// ConnectionService wraps connection requests and the 1:1 chats they produce.
type ConnectionService struct {
	conns repositories.ConnectionRepository
	chats repositories.ChatRepository
	log   zerolog.Logger
}

func NewConnectionService(conns repositories.ConnectionRepository, chats repositories.ChatRepository, log zerolog.Logger) *ConnectionService {
	return &ConnectionService{conns: conns, chats: chats, log: log}
}

// SendRequest creates a pending request from -> to.
func (s *ConnectionService) SendRequest(ctx context.Context, fromUserID, toUserID string) bool {
	if _, err := s.conns.CreateRequest(ctx, fromUserID, toUserID); err != nil {
		s.log.Warn().Err(err).Str("from", fromUserID).Str("to", toUserID).Msg("send request failed")
		return false
	}
	return true
}

// GetPendingRequests lists pending requests addressed to userID.
func (s *ConnectionService) GetPendingRequests(ctx context.Context, userID string) []models.ConnectionRequest {
	rows, err := s.conns.ListPendingIncoming(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list pending requests failed")
		return []models.ConnectionRequest{}
	}
	out := make([]models.ConnectionRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ConnectionFromRow(r))
	}
	return out
}

// AcceptRequest accepts and returns the request together with the pair's chat id.
func (s *ConnectionService) AcceptRequest(ctx context.Context, requestID, userID string) (models.ConnectionRequest, string, bool) {
	row, chatID, err := s.conns.AcceptRequest(ctx, requestID, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("request_id", requestID).Str("user_id", userID).Msg("accept request failed")
		return models.ConnectionRequest{}, "", false
	}
	return models.ConnectionFromRow(row), chatID, true
}

// RejectRequest moves a request to rejected.
func (s *ConnectionService) RejectRequest(ctx context.Context, requestID, userID string) bool {
	if err := s.conns.RejectRequest(ctx, requestID, userID); err != nil {
		s.log.Warn().Err(err).Str("request_id", requestID).Str("user_id", userID).Msg("reject request failed")
		return false
	}
	return true
}

// GetFriends returns profiles of accepted connections only.
func (s *ConnectionService) GetFriends(ctx context.Context, userID string) []models.Profile {
	rows, err := s.conns.ListFriends(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list friends failed")
		return []models.Profile{}
	}
	return profilesFromRows(rows)
}

// RepairMissingChats creates the 1:1 chat for any connected pair lacking one
// and returns how many were created.
func (s *ConnectionService) RepairMissingChats(ctx context.Context, userID string) int {
	peers, err := s.conns.ListConnectedWithoutChat(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list connections without chat failed")
		return 0
	}
	created := 0
	for _, peer := range peers {
		chatID, err := s.chats.CreateDirectChat(ctx, userID, peer)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Str("peer_id", peer).Msg("repair chat failed")
			continue
		}
		s.log.Info().Str("user_id", userID).Str("peer_id", peer).Str("chat_id", chatID).Msg("repaired missing chat")
		created++
	}
	return created
}
