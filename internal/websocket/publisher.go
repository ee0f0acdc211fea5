package websocket

// EventPublisher defines the interface for publishing leaderboard events
type EventPublisher interface {
	PublishUsersUpdated(payload interface{})
	PublishActivityUpdated(payload interface{})
}

// HubPublisher publishes events through the WebSocket hub
type HubPublisher struct {
	hub *Hub
}

// NewHubPublisher creates a publisher backed by the given hub
func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) PublishUsersUpdated(payload interface{}) {
	p.hub.Broadcast(NewUsersUpdatedEvent(payload))
}

func (p *HubPublisher) PublishActivityUpdated(payload interface{}) {
	p.hub.Broadcast(NewActivityUpdatedEvent(payload))
}

// NoOpPublisher is a publisher that discards events.
// Useful for tests and when the hub is disabled.
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new no-op publisher
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) PublishUsersUpdated(payload interface{})    {}
func (p *NoOpPublisher) PublishActivityUpdated(payload interface{}) {}
