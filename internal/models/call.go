package models

import "time"

// CallRow mirrors the calls table.
type CallRow struct {
	ID         string    `db:"id"`
	CallerID   string    `db:"caller_id"`
	ReceiverID string    `db:"receiver_id"`
	Type       string    `db:"type"`
	Status     string    `db:"status"`
	Duration   int       `db:"duration"`
	CreatedAt  time.Time `db:"created_at"`
}

// Call is a logged call attempt. There is no signaling state machine.
type Call struct {
	ID         string     `json:"id"`
	CallerID   string     `json:"callerId"`
	ReceiverID string     `json:"receiverId"`
	Type       CallType   `json:"type"`
	Status     CallStatus `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
	Duration   int        `json:"duration,omitempty"`
}

func CallFromRow(r CallRow) Call {
	return Call{
		ID:         r.ID,
		CallerID:   r.CallerID,
		ReceiverID: r.ReceiverID,
		Type:       CallType(r.Type),
		Status:     CallStatus(r.Status),
		Timestamp:  r.CreatedAt,
		Duration:   r.Duration,
	}
}

// Peer returns the other party of the call relative to userID.
func (c Call) Peer(userID string) string {
	if c.CallerID == userID {
		return c.ReceiverID
	}
	return c.CallerID
}
