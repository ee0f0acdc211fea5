package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewEvent("users.updated", "users", map[string]string{"k": "v"})
	after := time.Now().UTC()

	assert.Equal(t, "users.updated", event.Type)
	assert.Equal(t, "users", event.Entity)
	assert.False(t, event.Timestamp.Before(before))
	assert.False(t, event.Timestamp.After(after))
}

func TestNewUsersUpdatedEvent(t *testing.T) {
	event := NewUsersUpdatedEvent([]int{1, 2})
	assert.Equal(t, EventUsersUpdated, event.Type)
	assert.Equal(t, "users", event.Entity)
}

func TestNewActivityUpdatedEvent(t *testing.T) {
	event := NewActivityUpdatedEvent(nil)
	assert.Equal(t, EventActivityUpdated, event.Type)
	assert.Equal(t, "activity", event.Entity)
}

func TestEventToJSON(t *testing.T) {
	event := NewUsersUpdatedEvent([]string{"alex"})

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "users.updated", decoded["type"])
	assert.Equal(t, "users", decoded["entity"])
	assert.NotEmpty(t, decoded["timestamp"])

	payload, ok := decoded["payload"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, "alex", payload[0])
}
