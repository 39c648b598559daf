package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMessageFromRowMapsOptionalFields(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	row := MessageRow{
		ID:        "m1",
		ChatID:    "c1",
		SenderID:  "u1",
		ClientID:  strPtr("cid"),
		Content:   "hi",
		Type:      "image",
		MediaURL:  strPtr("https://cdn/x.jpg"),
		ReplyToID: strPtr("m0"),
		Reactions: Reactions{{UserID: "u2", Emoji: "🔥"}},
		CreatedAt: created,
	}

	msg := MessageFromRow(row)

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "c1", msg.ChatID)
	assert.Equal(t, "u1", msg.SenderID)
	assert.Equal(t, "cid", msg.ClientID)
	assert.Equal(t, MessageImage, msg.Type)
	assert.Equal(t, "https://cdn/x.jpg", msg.MediaURL)
	assert.Equal(t, "m0", msg.ReplyToID)
	assert.Equal(t, []Reaction{{UserID: "u2", Emoji: "🔥"}}, msg.Reactions)
	assert.Equal(t, created, msg.Timestamp)
	assert.Equal(t, StateConfirmed, msg.State)
	assert.False(t, msg.Seen)
}

func TestMessageToRowDefaultsType(t *testing.T) {
	row := Message{ChatID: "c1", SenderID: "u1", Content: "hi"}.ToRow()

	assert.Equal(t, "text", row.Type)
	assert.Nil(t, row.ClientID)
	assert.Nil(t, row.MediaURL)
	assert.Nil(t, row.ReplyToID)
	assert.NotNil(t, row.Reactions)
}

func TestMessageRowDecodesChangeFeedPayload(t *testing.T) {
	payload := `{"id":"m9","chat_id":"c1","sender_id":"u2","client_id":null,"content":"yo","type":"text",
		"media_url":null,"reply_to_id":null,"reactions":[],"created_at":"2024-05-01T10:00:00.123456+00:00"}`

	var row MessageRow
	require.NoError(t, json.Unmarshal([]byte(payload), &row))

	msg := MessageFromRow(row)
	assert.Equal(t, "m9", msg.ID)
	assert.Equal(t, "", msg.ClientID)
	assert.Equal(t, 2024, msg.Timestamp.Year())
}

func TestToggleReaction(t *testing.T) {
	start := []Reaction{{UserID: "a", Emoji: "👍"}}

	added := ToggleReaction(start, "b", "❤️")
	assert.Len(t, added, 2)

	replaced := ToggleReaction(added, "a", "😂")
	assert.Contains(t, replaced, Reaction{UserID: "a", Emoji: "😂"})
	assert.Len(t, replaced, 2)

	removed := ToggleReaction(replaced, "a", "😂")
	assert.Equal(t, []Reaction{{UserID: "b", Emoji: "❤️"}}, removed)
}

func TestReactionsScan(t *testing.T) {
	var r Reactions
	require.NoError(t, r.Scan([]byte(`[{"userId":"u","emoji":"x"}]`)))
	assert.Equal(t, Reactions{{UserID: "u", Emoji: "x"}}, r)

	require.NoError(t, r.Scan(nil))
	assert.Nil(t, r)

	assert.Error(t, r.Scan(42))
}

func TestProfileFromRowHidesPin(t *testing.T) {
	age := 30
	row := ProfileRow{ID: "u1", Username: "neo", Age: &age, ChatPin: strPtr("1234"), Status: strPtr("away")}

	p := ProfileFromRow(row)

	assert.Equal(t, 30, p.Age)
	assert.Equal(t, PresenceAway, p.Status)
	assert.True(t, p.HasChatPin)
	assert.Equal(t, "1234", p.ChatPin())

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "1234")
}

func TestProfileUpdateToRowDefaultsStatus(t *testing.T) {
	name := "neo"
	row := ProfileUpdate{Username: &name}.ToRow("u1", "neo@example.com", time.Now())

	require.NotNil(t, row.Status)
	assert.Equal(t, "online", *row.Status)
	assert.Equal(t, "neo", row.Username)
	assert.Equal(t, "neo@example.com", *row.Email)
}

func TestChatFromRow(t *testing.T) {
	row := ChatListRow{
		ChatRow:      ChatRow{ID: "c1", Name: strPtr("crew"), IsGroup: true, AdminID: strPtr("u1")},
		IsLocked:     true,
		Participants: []string{"u1", "u2"},
	}

	chat := ChatFromRow(row)

	assert.Equal(t, "crew", chat.Name)
	assert.True(t, chat.IsLocked)
	assert.True(t, chat.HasParticipant("u2"))
	assert.False(t, chat.HasParticipant("u3"))
}

func TestVibeExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, Vibe{ExpiresAt: now}.Expired(now))
	assert.False(t, Vibe{ExpiresAt: now.Add(time.Second)}.Expired(now))
}
