package services

import (
	"context"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// ChatService wraps chat and participant persistence.
type ChatService struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	log      zerolog.Logger
}

func NewChatService(chats repositories.ChatRepository, messages repositories.MessageRepository, log zerolog.Logger) *ChatService {
	return &ChatService{chats: chats, messages: messages, log: log}
}

// GetChats lists the user's chats with their latest message. Failures yield an empty list.
func (s *ChatService) GetChats(ctx context.Context, userID string) []models.Chat {
	rows, err := s.chats.ListChatsForUser(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list chats failed")
		return []models.Chat{}
	}

	chats := make([]models.Chat, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		chats = append(chats, models.ChatFromRow(r))
		ids = append(ids, r.ID)
	}

	latest, err := s.messages.LatestMessages(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("latest messages failed")
		return chats
	}
	byChat := make(map[string]models.Message, len(latest))
	for _, r := range latest {
		byChat[r.ChatID] = models.MessageFromRow(r)
	}
	for i := range chats {
		if m, ok := byChat[chats[i].ID]; ok {
			msg := m
			chats[i].LastMessage = &msg
		}
	}
	return chats
}

// CreateGroup creates a group chat and returns its id.
func (s *ChatService) CreateGroup(ctx context.Context, group models.NewGroup) (string, bool) {
	id, err := s.chats.CreateGroup(ctx, group)
	if err != nil {
		s.log.Error().Err(err).Str("admin_id", group.AdminID).Str("name", group.Name).Msg("create group failed")
		return "", false
	}
	return id, true
}

// ToggleLockChat sets the caller's lock flag on a chat.
func (s *ChatService) ToggleLockChat(ctx context.Context, chatID, userID string, locked bool) bool {
	if err := s.chats.SetLocked(ctx, chatID, userID, locked); err != nil {
		s.log.Warn().Err(err).Str("chat_id", chatID).Str("user_id", userID).Bool("locked", locked).Msg("toggle lock failed")
		return false
	}
	return true
}

// IsParticipant reports whether userID belongs to chatID. Lookup errors count as no.
func (s *ChatService) IsParticipant(ctx context.Context, chatID, userID string) bool {
	ok, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("chat_id", chatID).Str("user_id", userID).Msg("participant lookup failed")
		return false
	}
	return ok
}
