package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Reaction is a single emoji reaction. A user holds at most one per message.
type Reaction struct {
	UserID string `json:"userId"`
	Emoji  string `json:"emoji"`
}

// Reactions is stored as a JSONB array.
type Reactions []Reaction

// Value implements driver.Valuer.
func (r Reactions) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *Reactions) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return errors.New("reactions: unsupported scan type")
	}
}

// ToggleReaction applies a reaction from userID: the same emoji again removes
// it, a different emoji replaces it, otherwise it is appended.
func ToggleReaction(current []Reaction, userID, emoji string) []Reaction {
	out := make([]Reaction, 0, len(current)+1)
	found := false
	for _, r := range current {
		if r.UserID != userID {
			out = append(out, r)
			continue
		}
		found = true
		if r.Emoji != emoji {
			out = append(out, Reaction{UserID: userID, Emoji: emoji})
		}
	}
	if !found {
		out = append(out, Reaction{UserID: userID, Emoji: emoji})
	}
	return out
}

// MessageRow mirrors the messages table.
type MessageRow struct {
	ID        string    `db:"id" json:"id"`
	ChatID    string    `db:"chat_id" json:"chat_id"`
	SenderID  string    `db:"sender_id" json:"sender_id"`
	ClientID  *string   `db:"client_id" json:"client_id"`
	Content   string    `db:"content" json:"content"`
	Type      string    `db:"type" json:"type"`
	MediaURL  *string   `db:"media_url" json:"media_url"`
	ReplyToID *string   `db:"reply_to_id" json:"reply_to_id"`
	Reactions Reactions `db:"reactions" json:"reactions"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Message is the client view of a chat message.
type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	SenderID  string        `json:"senderId"`
	ClientID  string        `json:"clientId,omitempty"`
	Content   string        `json:"content"`
	Type      MessageType   `json:"type"`
	MediaURL  string        `json:"mediaUrl,omitempty"`
	ReplyToID string        `json:"replyToId,omitempty"`
	Reactions []Reaction    `json:"reactions,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Seen      bool          `json:"seen"`
	State     DeliveryState `json:"state"`
}

// MessageFromRow maps a stored row to a confirmed client message. Seen state
// is not persisted and is always false.
func MessageFromRow(r MessageRow) Message {
	var reactions []Reaction
	if len(r.Reactions) > 0 {
		reactions = append(reactions, r.Reactions...)
	}
	return Message{
		ID:        r.ID,
		ChatID:    r.ChatID,
		SenderID:  r.SenderID,
		ClientID:  deref(r.ClientID),
		Content:   r.Content,
		Type:      MessageType(r.Type),
		MediaURL:  deref(r.MediaURL),
		ReplyToID: deref(r.ReplyToID),
		Reactions: reactions,
		Timestamp: r.CreatedAt,
		State:     StateConfirmed,
	}
}

// ToRow maps a client message to an insert row. Server-assigned fields
// (id, created_at) are left for the database.
func (m Message) ToRow() MessageRow {
	msgType := m.Type
	if msgType == "" {
		msgType = MessageText
	}
	return MessageRow{
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		ClientID:  nullable(m.ClientID),
		Content:   m.Content,
		Type:      string(msgType),
		MediaURL:  nullable(m.MediaURL),
		ReplyToID: nullable(m.ReplyToID),
		Reactions: Reactions{},
	}
}

// IsPending reports whether the message awaits server confirmation.
func (m Message) IsPending() bool {
	return m.State == StatePending
}
