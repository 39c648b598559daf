package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertTriggerSendsOnlyKeys(t *testing.T) {
	var trigger string
	for _, stmt := range migrations {
		if strings.Contains(stmt, "FUNCTION notify_message_insert") {
			trigger = stmt
		}
	}
	require.NotEmpty(t, trigger)

	// A full row can exceed the 8000 byte NOTIFY limit and abort the insert.
	assert.NotContains(t, trigger, "row_to_json")
	assert.Contains(t, trigger, "json_build_object('id', NEW.id, 'chat_id', NEW.chat_id)")
	assert.Contains(t, trigger, "'"+MessageInsertChannel+"'")
}
