// Package websocket pushes trade confirmations to a user's open pages.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// TradeUpdate is sent after a buy or sell commits. Shares is negative for sells.
type TradeUpdate struct {
	OrderID string `json:"order_id"`
	Symbol  string `json:"symbol"`
	Shares  int64  `json:"shares"`
	Price   string `json:"price"`
	Cash    string `json:"cash"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Connections reports how many pages the user has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// BroadcastTrade never blocks; a client whose buffer is full misses the update.
func (h *Hub) BroadcastTrade(userID string, update TradeUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		log.Error().Err(err).Msg("encode trade update")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			log.Debug().Str("user_id", userID).Msg("dropping trade update for slow client")
		}
	}
}
