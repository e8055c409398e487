package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	UserID string
	Conn   *websocket.Conn

	writeMu sync.Mutex
}

// Write serialises frames; gorilla connections allow a single concurrent writer.
func (c *WSClient) Write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[string]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// Connections reports how many sockets a user has open.
func (h *RealtimeHub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends payload to every connection of userID. Write errors are
// left to the connection's read loop to clean up.
func (h *RealtimeHub) Broadcast(userID string, payload any) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		_ = c.Write(websocket.TextMessage, msg)
	}
	return nil
}

// CloseAll drops every connection; used on shutdown.
func (h *RealtimeHub) CloseAll() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[string]map[*WSClient]struct{})
	h.mu.Unlock()
	for _, set := range all {
		for c := range set {
			_ = c.Conn.Close()
		}
	}
}
