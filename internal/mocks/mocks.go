package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"vibechat-service/internal/models"
)

type AuthRepositoryMock struct {
	mock.Mock
}

func (m *AuthRepositoryMock) CreateUser(ctx context.Context, email string, passwordHash string, username string) (models.AuthUserRow, error) {
	args := m.Called(ctx, email, passwordHash, username)
	var out models.AuthUserRow
	if val := args.Get(0); val != nil {
		out = val.(models.AuthUserRow)
	}
	return out, args.Error(1)
}

func (m *AuthRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.AuthUserRow, error) {
	args := m.Called(ctx, email)
	var out models.AuthUserRow
	if val := args.Get(0); val != nil {
		out = val.(models.AuthUserRow)
	}
	return out, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID string) (models.ProfileRow, error) {
	args := m.Called(ctx, userID)
	var out models.ProfileRow
	if val := args.Get(0); val != nil {
		out = val.(models.ProfileRow)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) UpsertProfile(ctx context.Context, row models.ProfileRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) SearchProfiles(ctx context.Context, query string, callerID string, limit int) ([]models.ProfileRow, error) {
	args := m.Called(ctx, query, callerID, limit)
	var out []models.ProfileRow
	if val := args.Get(0); val != nil {
		out = val.([]models.ProfileRow)
	}
	return out, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID string) ([]models.ChatListRow, error) {
	args := m.Called(ctx, userID)
	var out []models.ChatListRow
	if val := args.Get(0); val != nil {
		out = val.([]models.ChatListRow)
	}
	return out, args.Error(1)
}

func (m *ChatRepositoryMock) CreateGroup(ctx context.Context, group models.NewGroup) (string, error) {
	args := m.Called(ctx, group)
	return args.String(0), args.Error(1)
}

func (m *ChatRepositoryMock) CreateDirectChat(ctx context.Context, userA string, userB string) (string, error) {
	args := m.Called(ctx, userA, userB)
	return args.String(0), args.Error(1)
}

func (m *ChatRepositoryMock) SetLocked(ctx context.Context, chatID string, userID string, locked bool) error {
	args := m.Called(ctx, chatID, userID, locked)
	return args.Error(0)
}

func (m *ChatRepositoryMock) TouchChat(ctx context.Context, chatID string) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID string, userID string) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, row models.MessageRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ListRecentMessages(ctx context.Context, chatID string, limit int) ([]models.MessageRow, error) {
	args := m.Called(ctx, chatID, limit)
	var out []models.MessageRow
	if val := args.Get(0); val != nil {
		out = val.([]models.MessageRow)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessageByID(ctx context.Context, id string) (models.MessageRow, error) {
	args := m.Called(ctx, id)
	var out models.MessageRow
	if val := args.Get(0); val != nil {
		out = val.(models.MessageRow)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessageByClientID(ctx context.Context, chatID string, clientID string) (models.MessageRow, error) {
	args := m.Called(ctx, chatID, clientID)
	var out models.MessageRow
	if val := args.Get(0); val != nil {
		out = val.(models.MessageRow)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) LatestMessages(ctx context.Context, chatIDs []string) ([]models.MessageRow, error) {
	args := m.Called(ctx, chatIDs)
	var out []models.MessageRow
	if val := args.Get(0); val != nil {
		out = val.([]models.MessageRow)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) ToggleReaction(ctx context.Context, chatID string, messageID string, userID string, emoji string) (models.MessageRow, error) {
	args := m.Called(ctx, chatID, messageID, userID, emoji)
	var out models.MessageRow
	if val := args.Get(0); val != nil {
		out = val.(models.MessageRow)
	}
	return out, args.Error(1)
}

type ConnectionRepositoryMock struct {
	mock.Mock
}

func (m *ConnectionRepositoryMock) CreateRequest(ctx context.Context, requesterID string, receiverID string) (models.ConnectionRow, error) {
	args := m.Called(ctx, requesterID, receiverID)
	var out models.ConnectionRow
	if val := args.Get(0); val != nil {
		out = val.(models.ConnectionRow)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) ListPendingIncoming(ctx context.Context, userID string) ([]models.ConnectionRow, error) {
	args := m.Called(ctx, userID)
	var out []models.ConnectionRow
	if val := args.Get(0); val != nil {
		out = val.([]models.ConnectionRow)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) ListFriends(ctx context.Context, userID string) ([]models.ProfileRow, error) {
	args := m.Called(ctx, userID)
	var out []models.ProfileRow
	if val := args.Get(0); val != nil {
		out = val.([]models.ProfileRow)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) AcceptRequest(ctx context.Context, requestID string, receiverID string) (models.ConnectionRow, string, error) {
	args := m.Called(ctx, requestID, receiverID)
	var out models.ConnectionRow
	if val := args.Get(0); val != nil {
		out = val.(models.ConnectionRow)
	}
	return out, args.String(1), args.Error(2)
}

func (m *ConnectionRepositoryMock) RejectRequest(ctx context.Context, requestID string, receiverID string) error {
	args := m.Called(ctx, requestID, receiverID)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) ListConnectedWithoutChat(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var out []string
	if val := args.Get(0); val != nil {
		out = val.([]string)
	}
	return out, args.Error(1)
}

type BlockRepositoryMock struct {
	mock.Mock
}

func (m *BlockRepositoryMock) BlockUser(ctx context.Context, blockerID string, blockedID string) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *BlockRepositoryMock) UnblockUser(ctx context.Context, blockerID string, blockedID string) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *BlockRepositoryMock) IsBlocked(ctx context.Context, userID string, otherID string) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *BlockRepositoryMock) ListBlocked(ctx context.Context, blockerID string) ([]models.ProfileRow, error) {
	args := m.Called(ctx, blockerID)
	var out []models.ProfileRow
	if val := args.Get(0); val != nil {
		out = val.([]models.ProfileRow)
	}
	return out, args.Error(1)
}

type CallRepositoryMock struct {
	mock.Mock
}

func (m *CallRepositoryMock) CreateCall(ctx context.Context, row models.CallRow) (models.CallRow, error) {
	args := m.Called(ctx, row)
	var out models.CallRow
	if val := args.Get(0); val != nil {
		out = val.(models.CallRow)
	}
	return out, args.Error(1)
}

func (m *CallRepositoryMock) ListCallsForUser(ctx context.Context, userID string) ([]models.CallRow, error) {
	args := m.Called(ctx, userID)
	var out []models.CallRow
	if val := args.Get(0); val != nil {
		out = val.([]models.CallRow)
	}
	return out, args.Error(1)
}

type StatusRepositoryMock struct {
	mock.Mock
}

func (m *StatusRepositoryMock) CreateStatus(ctx context.Context, row models.StatusRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *StatusRepositoryMock) ListActiveStatuses(ctx context.Context, userIDs []string, now time.Time) ([]models.StatusRow, error) {
	args := m.Called(ctx, userIDs, now)
	var out []models.StatusRow
	if val := args.Get(0); val != nil {
		out = val.([]models.StatusRow)
	}
	return out, args.Error(1)
}

func (m *StatusRepositoryMock) PurgeExpiredStatuses(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	var out int64
	if val := args.Get(0); val != nil {
		out = val.(int64)
	}
	return out, args.Error(1)
}

type VibeRepositoryMock struct {
	mock.Mock
}

func (m *VibeRepositoryMock) CreateVibe(ctx context.Context, row models.VibeRow) (models.VibeRow, error) {
	args := m.Called(ctx, row)
	var out models.VibeRow
	if val := args.Get(0); val != nil {
		out = val.(models.VibeRow)
	}
	return out, args.Error(1)
}

func (m *VibeRepositoryMock) GetVibe(ctx context.Context, vibeID string) (models.VibeRow, error) {
	args := m.Called(ctx, vibeID)
	var out models.VibeRow
	if val := args.Get(0); val != nil {
		out = val.(models.VibeRow)
	}
	return out, args.Error(1)
}

func (m *VibeRepositoryMock) ListActiveVibes(ctx context.Context, userIDs []string, now time.Time) ([]models.VibeRow, error) {
	args := m.Called(ctx, userIDs, now)
	var out []models.VibeRow
	if val := args.Get(0); val != nil {
		out = val.([]models.VibeRow)
	}
	return out, args.Error(1)
}

func (m *VibeRepositoryMock) RecordView(ctx context.Context, vibeID string, viewerID string) (bool, error) {
	args := m.Called(ctx, vibeID, viewerID)
	return args.Bool(0), args.Error(1)
}

func (m *VibeRepositoryMock) ListViewers(ctx context.Context, vibeID string) ([]models.VibeViewerRow, error) {
	args := m.Called(ctx, vibeID)
	var out []models.VibeViewerRow
	if val := args.Get(0); val != nil {
		out = val.([]models.VibeViewerRow)
	}
	return out, args.Error(1)
}

func (m *VibeRepositoryMock) PurgeExpiredVibes(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	var out []string
	if val := args.Get(0); val != nil {
		out = val.([]string)
	}
	return out, args.Error(1)
}
