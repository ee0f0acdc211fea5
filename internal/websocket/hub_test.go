package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements ClientInterface for testing
type mockClient struct {
	id       string
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	sendErr  error
}

func newMockClient(id string) *mockClient {
	return &mockClient{id: id}
}

func (m *mockClient) ID() string { return m.id }

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *mockClient) lastMessage() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1")

	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubUnregisterUnknownClient(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1")

	// Should not panic
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	clients := []*mockClient{
		newMockClient("client-1"),
		newMockClient("client-2"),
		newMockClient("client-3"),
	}
	for _, c := range clients {
		hub.Register(c)
	}

	hub.Broadcast(NewUsersUpdatedEvent([]string{"alex"}))

	// Sends are async
	assert.Eventually(t, func() bool {
		for _, c := range clients {
			if c.messageCount() != 1 {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)

	var event Event
	require.NoError(t, json.Unmarshal(clients[0].lastMessage(), &event))
	assert.Equal(t, EventUsersUpdated, event.Type)
	assert.Equal(t, "users", event.Entity)
}

func TestHubBroadcastSkipsFailedClient(t *testing.T) {
	hub := NewHub()
	good := newMockClient("good")
	bad := newMockClient("bad")
	bad.sendErr = ErrClientClosed

	hub.Register(good)
	hub.Register(bad)

	hub.Broadcast(NewActivityUpdatedEvent(nil))

	assert.Eventually(t, func() bool {
		return good.messageCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHubBroadcastNoClients(t *testing.T) {
	hub := NewHub()
	// Should not panic
	hub.Broadcast(NewUsersUpdatedEvent(nil))
}

func TestHubPublisher(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1")
	hub.Register(client)

	publisher := NewHubPublisher(hub)
	publisher.PublishUsersUpdated([]string{"a"})
	publisher.PublishActivityUpdated([]string{"b"})

	assert.Eventually(t, func() bool {
		return client.messageCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestNoOpPublisher(t *testing.T) {
	publisher := NewNoOpPublisher()
	// Should not panic
	publisher.PublishUsersUpdated(nil)
	publisher.PublishActivityUpdated(nil)
}
