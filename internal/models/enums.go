package models

// MessageType tags message payloads.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
	MessageAudio MessageType = "audio"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageAudio:
		return true
	}
	return false
}

// DeliveryState is the client-side lifecycle of a message.
// Discarded messages are removed from the list instead of being tagged.
type DeliveryState string

const (
	StatePending   DeliveryState = "pending"
	StateConfirmed DeliveryState = "confirmed"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

type CallType string

const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

func (t CallType) Valid() bool {
	return t == CallVoice || t == CallVideo
}

type CallStatus string

const (
	CallIncoming  CallStatus = "incoming"
	CallOutgoing  CallStatus = "outgoing"
	CallMissed    CallStatus = "missed"
	CallCompleted CallStatus = "completed"
)

// StatusType tags story posts.
type StatusType string

const (
	StatusText  StatusType = "text"
	StatusImage StatusType = "image"
	StatusVideo StatusType = "video"
)

func (t StatusType) Valid() bool {
	switch t {
	case StatusText, StatusImage, StatusVideo:
		return true
	}
	return false
}

// VibeType tags vibe media.
type VibeType string

const (
	VibeImage VibeType = "image"
	VibeVideo VibeType = "video"
)

func (t VibeType) Valid() bool {
	return t == VibeImage || t == VibeVideo
}

// Extension is the file extension used for uploaded media.
func (t VibeType) Extension() string {
	if t == VibeVideo {
		return "mp4"
	}
	return "jpg"
}

// ContentType is the MIME type used for uploaded media.
func (t VibeType) ContentType() string {
	if t == VibeVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
	PresenceAway    PresenceStatus = "away"
)
