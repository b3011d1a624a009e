/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Seednode/liarparty/internal/crypto"
	"github.com/Seednode/liarparty/internal/game"
)

const sendBuffer = 32

type Client struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	limiter  *rate.Limiter
	identity *crypto.Identity

	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, limiter *rate.Limiter, identity *crypto.Identity) *Client {
	return &Client{
		id:       id,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		limiter:  limiter,
		identity: identity,
	}
}

// enqueue hands data to the write pump. A client whose buffer is full is
// closed; its read pump then runs the usual leave.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Hub is the connection registry behind game.Gateway.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     zerolog.Logger
}

func newHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     logger.With().Str("module", "gateway").Logger(),
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if ok {
		c.close()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) encode(m game.Message) ([]byte, bool) {
	data, err := game.Encode(m)
	if err != nil {
		h.log.Error().Err(err).Str("type", game.TypeOf(m)).Msg("could not encode message")
		return nil, false
	}
	return data, true
}

func (h *Hub) deliver(c *Client, data []byte, typ string) {
	if !c.enqueue(data) {
		h.log.Debug().Str("conn", c.id).Str("type", typ).Msg("dropped message for slow or closed connection")
	}
}

func (h *Hub) Unicast(connID string, m game.Message) {
	data, ok := h.encode(m)
	if !ok {
		return
	}

	h.mu.RLock()
	c, found := h.clients[connID]
	h.mu.RUnlock()

	if found {
		h.deliver(c, data, game.TypeOf(m))
	}
}

func (h *Hub) Multicast(connIDs []string, m game.Message) {
	data, ok := h.encode(m)
	if !ok {
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(connIDs))
	for _, id := range connIDs {
		if c, found := h.clients[id]; found {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, data, game.TypeOf(m))
	}
}

func (h *Hub) Broadcast(m game.Message) {
	data, ok := h.encode(m)
	if !ok {
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, data, game.TypeOf(m))
	}
}

// closeAll disconnects every client, ending their pumps.
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		_ = c.conn.Close()
	}
}
