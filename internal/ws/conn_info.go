package ws

import "time"

// ConnInfo identifies one websocket connection in logs and lifecycle events.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func (i ConnInfo) identity() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   i.UserID,
		"device_id": i.DeviceID,
		"ip":        i.IP,
	}
}

func (i ConnInfo) lifecycle(event, reason string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"event":       event,
		"conn_id":     i.ConnID,
		"duration_ms": now.Sub(i.ConnectedAt).Milliseconds(),
		"reason":      reason,
	}
}
