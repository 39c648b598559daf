package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// MessageService wraps message persistence.
type MessageService struct {
	messages repositories.MessageRepository
	chats    repositories.ChatRepository
	log      zerolog.Logger
}

func NewMessageService(messages repositories.MessageRepository, chats repositories.ChatRepository, log zerolog.Logger) *MessageService {
	return &MessageService{messages: messages, chats: chats, log: log}
}

// GetMessages returns up to limit messages, newest first.
func (s *MessageService) GetMessages(ctx context.Context, chatID string, limit int) []models.Message {
	rows, err := s.messages.ListRecentMessages(ctx, chatID, limit)
	if err != nil {
		s.log.Warn().Err(err).Str("chat_id", chatID).Msg("list messages failed")
		return []models.Message{}
	}
	out := make([]models.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.MessageFromRow(r))
	}
	return out
}

// SendMessage inserts msg and, on success, touches the chat's update time.
func (s *MessageService) SendMessage(ctx context.Context, msg models.Message) bool {
	if err := s.messages.CreateMessage(ctx, msg.ToRow()); err != nil {
		s.log.Warn().Err(err).Str("chat_id", msg.ChatID).Str("client_id", msg.ClientID).Msg("send message failed")
		return false
	}
	if err := s.chats.TouchChat(ctx, msg.ChatID); err != nil {
		s.log.Warn().Err(err).Str("chat_id", msg.ChatID).Msg("touch chat failed")
	}
	return true
}

// GetByClientID fetches the confirmed copy of a message sent with clientID.
func (s *MessageService) GetByClientID(ctx context.Context, chatID, clientID string) (models.Message, bool) {
	row, err := s.messages.GetMessageByClientID(ctx, chatID, clientID)
	if err != nil {
		if !errors.Is(err, repositories.ErrMessageNotFound) {
			s.log.Warn().Err(err).Str("chat_id", chatID).Str("client_id", clientID).Msg("fetch back failed")
		}
		return models.Message{}, false
	}
	return models.MessageFromRow(row), true
}

// ToggleReaction applies userID's emoji to a message of chatID.
func (s *MessageService) ToggleReaction(ctx context.Context, chatID, messageID, userID, emoji string) (models.Message, bool) {
	row, err := s.messages.ToggleReaction(ctx, chatID, messageID, userID, emoji)
	if err != nil {
		s.log.Warn().Err(err).Str("message_id", messageID).Msg("toggle reaction failed")
		return models.Message{}, false
	}
	return models.MessageFromRow(row), true
}
