package models

import "time"

// ConnectionRow mirrors the connections table.
type ConnectionRow struct {
	ID          string    `db:"id"`
	RequesterID string    `db:"requester_id"`
	ReceiverID  string    `db:"receiver_id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

// ConnectionRequest is a directed requester -> receiver edge.
type ConnectionRequest struct {
	ID         string           `json:"id"`
	FromUserID string           `json:"fromUserId"`
	ToUserID   string           `json:"toUserId"`
	Status     ConnectionStatus `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
}

func ConnectionFromRow(r ConnectionRow) ConnectionRequest {
	return ConnectionRequest{
		ID:         r.ID,
		FromUserID: r.RequesterID,
		ToUserID:   r.ReceiverID,
		Status:     ConnectionStatus(r.Status),
		Timestamp:  r.CreatedAt,
	}
}

// BlockRow is one direction of a block relation; either direction blocks.
type BlockRow struct {
	BlockerID string    `db:"blocker_id"`
	BlockedID string    `db:"blocked_id"`
	CreatedAt time.Time `db:"created_at"`
}
