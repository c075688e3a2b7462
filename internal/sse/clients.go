// Package sse fans session events out to Server-Sent Events subscribers.
package sse

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/session"
)

var sseLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sseLogger = l
}

// Message is one SSE frame.
type Message struct {
	Event string
	Data  string
}

type Client struct {
	Msg       chan Message
	SessionID string
}

func NewClient(sessionID string, buffer int) *Client {
	return &Client{
		Msg:       make(chan Message, buffer),
		SessionID: sessionID,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
	sseLogger.Debug().Str("session_id", client.SessionID).Int("clients", len(s.clients)).Msg("SSE client connected")
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.clients[client] {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
	sseLogger.Debug().Str("session_id", client.SessionID).Int("clients", len(s.clients)).Msg("SSE client disconnected")
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client of sessionID. Clients that are not
// keeping up miss the message.
func (s *SSEClients) Broadcast(sessionID string, msg Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.SessionID == sessionID {
			select {
			case client.Msg <- msg:
			default:
				sseLogger.Warn().Str("session_id", sessionID).Str("event", msg.Event).Msg("SSE client too slow, dropping message")
			}
		}
	}
}

// Notify publishes a session event to that session's subscribers.
func (s *SSEClients) Notify(ev session.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		sseLogger.Error().Err(err).Str("session_id", ev.SessionID).Msg("Failed to encode session event")
		return
	}
	s.Broadcast(ev.SessionID, Message{Event: string(ev.Type), Data: string(data)})
}
