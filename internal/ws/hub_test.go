package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vibechat-service/internal/mocks"
	"vibechat-service/internal/models"
)

type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	writeErr error
	closed   bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// stalledConn blocks every write until release is closed.
type stalledConn struct {
	fakeConn
	release chan struct{}
}

func (s *stalledConn) WriteMessage(t int, data []byte) error {
	<-s.release
	return s.fakeConn.WriteMessage(t, data)
}

func TestHubAddAndRemove(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())

	a := hub.Add(&fakeConn{}, ConnInfo{ConnID: "a", UserID: "u1"})
	hub.Add(&fakeConn{}, ConnInfo{ConnID: "b", UserID: "u1"})
	assert.Equal(t, 2, hub.Connections("u1"))

	assert.True(t, hub.Remove(a))
	assert.False(t, hub.Remove(a))
	assert.Equal(t, 1, hub.Connections("u1"))
	assert.Equal(t, 0, hub.Connections("u2"))
}

func TestSendToUserDeliversOnlyToThatUser(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	mine, other := &fakeConn{}, &fakeConn{}
	hub.Add(mine, ConnInfo{ConnID: "a", UserID: "u1"})
	hub.Add(other, ConnInfo{ConnID: "b", UserID: "u2"})

	msg := models.Message{ID: "m1", ChatID: "c1", Content: "hi"}
	hub.SendToUser("u1", models.StoreEvent{Type: models.EventMessageUpserted, ChatID: "c1", Message: &msg})

	require.Eventually(t, func() bool { return mine.frameCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, other.frameCount())

	var got models.StoreEvent
	require.NoError(t, json.Unmarshal(mine.frames[0], &got))
	assert.Equal(t, models.EventMessageUpserted, got.Type)
	require.NotNil(t, got.Message)
	assert.Equal(t, "m1", got.Message.ID)
}

func TestFailedWriteDropsConnection(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, RoutingKey, mock.MatchedBy(func(ev map[string]interface{}) bool {
		return ev["event_name"] == "ws_error"
	})).Return(nil).Once()

	hub := NewHub(publisher, zerolog.Nop())
	broken := &fakeConn{writeErr: errors.New("broken pipe")}
	healthy := &fakeConn{}
	hub.Add(broken, ConnInfo{ConnID: "a", UserID: "u1", ConnectedAt: time.Now()})
	hub.Add(healthy, ConnInfo{ConnID: "b", UserID: "u1", ConnectedAt: time.Now()})

	hub.SendToUser("u1", models.StoreEvent{Type: models.EventChatsUpdated})

	require.Eventually(t, func() bool { return hub.Connections("u1") == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
	assert.Equal(t, 1, healthy.frameCount())
	assert.Equal(t, []string{RoutingKey}, publisher.RoutingKeys())
	publisher.AssertExpectations(t)
}

func TestStalledSocketDoesNotDelayOtherUsers(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	stuck := &stalledConn{release: make(chan struct{})}
	defer close(stuck.release)
	fine := &fakeConn{}
	hub.Add(stuck, ConnInfo{ConnID: "a", UserID: "u1"})
	hub.Add(fine, ConnInfo{ConnID: "b", UserID: "u2"})

	start := time.Now()
	for i := 0; i < 5; i++ {
		hub.SendToUser("u1", models.StoreEvent{Type: models.EventChatsUpdated})
		hub.SendToUser("u2", models.StoreEvent{Type: models.EventChatsUpdated})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	require.Eventually(t, func() bool { return fine.frameCount() == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.Connections("u1"))
}

func TestOverflowingClientIsDropped(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, RoutingKey, mock.MatchedBy(func(ev map[string]interface{}) bool {
		return ev["event_name"] == "ws_error"
	})).Return(nil).Once()

	hub := NewHub(publisher, zerolog.Nop())
	stuck := &stalledConn{release: make(chan struct{})}
	defer close(stuck.release)
	hub.Add(stuck, ConnInfo{ConnID: "a", UserID: "u1", ConnectedAt: time.Now()})

	// One frame is held by the writer, the rest fill the queue.
	for i := 0; i < sendQueueSize+2; i++ {
		hub.SendToUser("u1", models.StoreEvent{Type: models.EventChatsUpdated})
	}

	assert.Equal(t, 0, hub.Connections("u1"))
	assert.True(t, stuck.isClosed())
	publisher.AssertExpectations(t)
}
