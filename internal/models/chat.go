package models

import (
	"time"

	"github.com/lib/pq"
)

// ChatRow mirrors the chats table.
type ChatRow struct {
	ID          string    `db:"id"`
	Name        *string   `db:"name"`
	Description *string   `db:"description"`
	IconURL     *string   `db:"icon_url"`
	IsGroup     bool      `db:"is_group"`
	AdminID     *string   `db:"admin_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ChatParticipantRow mirrors chat_participants. The lock flag belongs to the
// (chat, user) pair, not to the chat.
type ChatParticipantRow struct {
	ChatID   string    `db:"chat_id"`
	UserID   string    `db:"user_id"`
	IsLocked bool      `db:"is_locked"`
	JoinedAt time.Time `db:"joined_at"`
}

// ChatListRow is a chat joined with the caller's participant row and the full
// participant list.
type ChatListRow struct {
	ChatRow
	IsLocked     bool           `db:"is_locked"`
	Participants pq.StringArray `db:"participants"`
}

// Chat is the client view of a 1:1 or group conversation.
type Chat struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Description  string    `json:"description,omitempty"`
	IconURL      string    `json:"iconUrl,omitempty"`
	IsGroup      bool      `json:"isGroup"`
	AdminID      string    `json:"adminId,omitempty"`
	Participants []string  `json:"participants"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	UnreadCount  int       `json:"unreadCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
	IsLocked     bool      `json:"isLocked"`
}

// ChatFromRow maps a chat list row to the client type.
func ChatFromRow(r ChatListRow) Chat {
	participants := make([]string, 0, len(r.Participants))
	participants = append(participants, r.Participants...)
	return Chat{
		ID:           r.ID,
		Name:         deref(r.Name),
		Description:  deref(r.Description),
		IconURL:      deref(r.IconURL),
		IsGroup:      r.IsGroup,
		AdminID:      deref(r.AdminID),
		Participants: participants,
		UpdatedAt:    r.UpdatedAt,
		IsLocked:     r.IsLocked,
	}
}

// HasParticipant reports whether userID belongs to the chat.
func (c Chat) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// NewGroup describes a group chat to create.
type NewGroup struct {
	Name        string
	Description string
	AdminID     string
	MemberIDs   []string
}
