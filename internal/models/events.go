package models

// Store event types pushed to connected clients.
const (
	EventChatsUpdated     = "chats_updated"
	EventMessageUpserted  = "message_upserted"
	EventMessageDiscarded = "message_discarded"
	EventMessagesLoaded   = "messages_loaded"
)

// StoreEvent is broadcast over websockets when a session's state changes.
type StoreEvent struct {
	Type      string    `json:"type"`
	ChatID    string    `json:"chatId,omitempty"`
	Message   *Message  `json:"message,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Chats     []Chat    `json:"chats,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
}
