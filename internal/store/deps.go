package store

import (
	"context"

	"vibechat-service/internal/models"
	"vibechat-service/internal/realtime"
)

// The service contracts below never fail hard: failures come back as empty
// results or false.

type ChatService interface {
	GetChats(ctx context.Context, userID string) []models.Chat
	CreateGroup(ctx context.Context, group models.NewGroup) (string, bool)
	ToggleLockChat(ctx context.Context, chatID, userID string, locked bool) bool
	IsParticipant(ctx context.Context, chatID, userID string) bool
}

type MessageService interface {
	GetMessages(ctx context.Context, chatID string, limit int) []models.Message
	SendMessage(ctx context.Context, msg models.Message) bool
	GetByClientID(ctx context.Context, chatID, clientID string) (models.Message, bool)
	ToggleReaction(ctx context.Context, chatID, messageID, userID, emoji string) (models.Message, bool)
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, bool)
	GetOwnProfile(ctx context.Context, userID string) (models.Profile, bool)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) bool
	SearchProfiles(ctx context.Context, query, callerID string) []models.Profile
}

type ConnectionService interface {
	SendRequest(ctx context.Context, fromUserID, toUserID string) bool
	GetPendingRequests(ctx context.Context, userID string) []models.ConnectionRequest
	AcceptRequest(ctx context.Context, requestID, userID string) (models.ConnectionRequest, string, bool)
	RejectRequest(ctx context.Context, requestID, userID string) bool
	GetFriends(ctx context.Context, userID string) []models.Profile
	RepairMissingChats(ctx context.Context, userID string) int
}

type BlockService interface {
	BlockUser(ctx context.Context, blockerID, blockedID string) bool
	UnblockUser(ctx context.Context, blockerID, blockedID string) bool
	IsBlocked(ctx context.Context, userID, otherID string) bool
	GetBlockedUsers(ctx context.Context, userID string) []models.Profile
}

type StatusService interface {
	UploadStatus(ctx context.Context, userID string, statusType models.StatusType, content, mediaURL string) bool
	GetRecentStatuses(ctx context.Context, userIDs []string) []models.Story
}

type VibeService interface {
	UploadVibe(ctx context.Context, userID string, vibeType models.VibeType, data []byte, note string) (models.Vibe, bool)
	GetVibes(ctx context.Context, userIDs []string) []models.Vibe
	RecordView(ctx context.Context, vibeID, viewerID string) bool
	GetViewers(ctx context.Context, vibeID, ownerID string) []models.VibeViewer
}

type CallService interface {
	LogCall(ctx context.Context, call models.Call) (models.Call, bool)
	GetCallHistory(ctx context.Context, userID string) []models.Call
}

// Feed is the message insert change feed.
type Feed interface {
	Subscribe(h realtime.Handler) func()
}
