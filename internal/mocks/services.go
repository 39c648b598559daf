package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vibechat-service/internal/models"
)

type ChatServiceMock struct {
	mock.Mock
}

func (m *ChatServiceMock) GetChats(ctx context.Context, userID string) []models.Chat {
	args := m.Called(ctx, userID)
	var out []models.Chat
	if val := args.Get(0); val != nil {
		out = val.([]models.Chat)
	}
	return out
}

func (m *ChatServiceMock) CreateGroup(ctx context.Context, group models.NewGroup) (string, bool) {
	args := m.Called(ctx, group)
	return args.String(0), args.Bool(1)
}

func (m *ChatServiceMock) IsParticipant(ctx context.Context, chatID string, userID string) bool {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0)
}

func (m *ChatServiceMock) ToggleLockChat(ctx context.Context, chatID string, userID string, locked bool) bool {
	args := m.Called(ctx, chatID, userID, locked)
	return args.Bool(0)
}

type MessageServiceMock struct {
	mock.Mock
}

func (m *MessageServiceMock) GetMessages(ctx context.Context, chatID string, limit int) []models.Message {
	args := m.Called(ctx, chatID, limit)
	var out []models.Message
	if val := args.Get(0); val != nil {
		out = val.([]models.Message)
	}
	return out
}

func (m *MessageServiceMock) SendMessage(ctx context.Context, msg models.Message) bool {
	args := m.Called(ctx, msg)
	return args.Bool(0)
}

func (m *MessageServiceMock) GetByClientID(ctx context.Context, chatID string, clientID string) (models.Message, bool) {
	args := m.Called(ctx, chatID, clientID)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Bool(1)
}

func (m *MessageServiceMock) ToggleReaction(ctx context.Context, chatID string, messageID string, userID string, emoji string) (models.Message, bool) {
	args := m.Called(ctx, chatID, messageID, userID, emoji)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Bool(1)
}

type ProfileServiceMock struct {
	mock.Mock
}

func (m *ProfileServiceMock) GetProfile(ctx context.Context, userID string) (models.Profile, bool) {
	args := m.Called(ctx, userID)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Bool(1)
}

func (m *ProfileServiceMock) GetOwnProfile(ctx context.Context, userID string) (models.Profile, bool) {
	args := m.Called(ctx, userID)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Bool(1)
}

func (m *ProfileServiceMock) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) bool {
	args := m.Called(ctx, userID, update)
	return args.Bool(0)
}

func (m *ProfileServiceMock) SearchProfiles(ctx context.Context, query string, callerID string) []models.Profile {
	args := m.Called(ctx, query, callerID)
	var out []models.Profile
	if val := args.Get(0); val != nil {
		out = val.([]models.Profile)
	}
	return out
}

type ConnectionServiceMock struct {
	mock.Mock
}

func (m *ConnectionServiceMock) SendRequest(ctx context.Context, fromUserID string, toUserID string) bool {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Bool(0)
}

func (m *ConnectionServiceMock) GetPendingRequests(ctx context.Context, userID string) []models.ConnectionRequest {
	args := m.Called(ctx, userID)
	var out []models.ConnectionRequest
	if val := args.Get(0); val != nil {
		out = val.([]models.ConnectionRequest)
	}
	return out
}

func (m *ConnectionServiceMock) AcceptRequest(ctx context.Context, requestID string, userID string) (models.ConnectionRequest, string, bool) {
	args := m.Called(ctx, requestID, userID)
	var out models.ConnectionRequest
	if val := args.Get(0); val != nil {
		out = val.(models.ConnectionRequest)
	}
	return out, args.String(1), args.Bool(2)
}

func (m *ConnectionServiceMock) RejectRequest(ctx context.Context, requestID string, userID string) bool {
	args := m.Called(ctx, requestID, userID)
	return args.Bool(0)
}

func (m *ConnectionServiceMock) GetFriends(ctx context.Context, userID string) []models.Profile {
	args := m.Called(ctx, userID)
	var out []models.Profile
	if val := args.Get(0); val != nil {
		out = val.([]models.Profile)
	}
	return out
}

func (m *ConnectionServiceMock) RepairMissingChats(ctx context.Context, userID string) int {
	args := m.Called(ctx, userID)
	return args.Int(0)
}

type BlockServiceMock struct {
	mock.Mock
}

func (m *BlockServiceMock) BlockUser(ctx context.Context, blockerID string, blockedID string) bool {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Bool(0)
}

func (m *BlockServiceMock) UnblockUser(ctx context.Context, blockerID string, blockedID string) bool {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Bool(0)
}

func (m *BlockServiceMock) IsBlocked(ctx context.Context, userID string, otherID string) bool {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0)
}

func (m *BlockServiceMock) GetBlockedUsers(ctx context.Context, userID string) []models.Profile {
	args := m.Called(ctx, userID)
	var out []models.Profile
	if val := args.Get(0); val != nil {
		out = val.([]models.Profile)
	}
	return out
}

type StatusServiceMock struct {
	mock.Mock
}

func (m *StatusServiceMock) UploadStatus(ctx context.Context, userID string, statusType models.StatusType, content string, mediaURL string) bool {
	args := m.Called(ctx, userID, statusType, content, mediaURL)
	return args.Bool(0)
}

func (m *StatusServiceMock) GetRecentStatuses(ctx context.Context, userIDs []string) []models.Story {
	args := m.Called(ctx, userIDs)
	var out []models.Story
	if val := args.Get(0); val != nil {
		out = val.([]models.Story)
	}
	return out
}

type VibeServiceMock struct {
	mock.Mock
}

func (m *VibeServiceMock) UploadVibe(ctx context.Context, userID string, vibeType models.VibeType, data []byte, note string) (models.Vibe, bool) {
	args := m.Called(ctx, userID, vibeType, data, note)
	var out models.Vibe
	if val := args.Get(0); val != nil {
		out = val.(models.Vibe)
	}
	return out, args.Bool(1)
}

func (m *VibeServiceMock) GetVibes(ctx context.Context, userIDs []string) []models.Vibe {
	args := m.Called(ctx, userIDs)
	var out []models.Vibe
	if val := args.Get(0); val != nil {
		out = val.([]models.Vibe)
	}
	return out
}

func (m *VibeServiceMock) RecordView(ctx context.Context, vibeID string, viewerID string) bool {
	args := m.Called(ctx, vibeID, viewerID)
	return args.Bool(0)
}

func (m *VibeServiceMock) GetViewers(ctx context.Context, vibeID string, ownerID string) []models.VibeViewer {
	args := m.Called(ctx, vibeID, ownerID)
	var out []models.VibeViewer
	if val := args.Get(0); val != nil {
		out = val.([]models.VibeViewer)
	}
	return out
}

type CallServiceMock struct {
	mock.Mock
}

func (m *CallServiceMock) LogCall(ctx context.Context, call models.Call) (models.Call, bool) {
	args := m.Called(ctx, call)
	var out models.Call
	if val := args.Get(0); val != nil {
		out = val.(models.Call)
	}
	return out, args.Bool(1)
}

func (m *CallServiceMock) GetCallHistory(ctx context.Context, userID string) []models.Call {
	args := m.Called(ctx, userID)
	var out []models.Call
	if val := args.Get(0); val != nil {
		out = val.([]models.Call)
	}
	return out
}
