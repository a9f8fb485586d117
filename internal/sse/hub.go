package sse

import (
	"sync"

	"github.com/google/uuid"

	"github.com/agrosub/agrosub-backend/internal/logger"
)

type SessionEvent string

const (
	SessionEventSignedIn  SessionEvent = "SignedIn"
	SessionEventSignedOut SessionEvent = "SignedOut"
)

type SessionMessage struct {
	Event SessionEvent `json:"event"`
	Data  any          `json:"data,omitempty"`
}

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Outbound chan SessionMessage
}

// Hub fans session-change events (sign-in, sign-out) out to the SSE
// connections of the affected user, so clients re-run their authorization
// check instead of polling the session endpoint.
type Hub struct {
	mu      sync.RWMutex
	log     *logger.Logger
	clients map[uuid.UUID]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log.With("component", "SessionHub"),
		clients: make(map[uuid.UUID]map[*Client]bool),
	}
}

func (hub *Hub) Subscribe(userID uuid.UUID) *Client {
	client := &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Outbound: make(chan SessionMessage, 10),
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	set, exists := hub.clients[userID]
	if !exists {
		set = make(map[*Client]bool)
		hub.clients[userID] = set
	}
	set[client] = true
	hub.log.Debug("Session client subscribed", "clientID", client.ID, "userID", userID)
	return client
}

func (hub *Hub) Unsubscribe(client *Client) {
	if client == nil {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if set, ok := hub.clients[client.UserID]; ok {
		if _, present := set[client]; present {
			delete(set, client)
			close(client.Outbound)
		}
		if len(set) == 0 {
			delete(hub.clients, client.UserID)
		}
	}
	hub.log.Debug("Session client unsubscribed", "clientID", client.ID)
}

// Publish delivers a session event to every connection of the user. Slow
// consumers are skipped rather than blocking the publisher.
func (hub *Hub) Publish(userID uuid.UUID, msg SessionMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for client := range hub.clients[userID] {
		select {
		case client.Outbound <- msg:
		default:
			hub.log.Warn("Dropping session event for slow client", "clientID", client.ID, "event", msg.Event)
		}
	}
}
