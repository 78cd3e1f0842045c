package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	peerBuffer = 16
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

type delivery struct {
	recipients []uuid.UUID
	payload    interface{}
}

// peer owns the writes to one connection. Its outbox is closed only while
// holding the hub lock and only when the peer leaves the client map.
type peer struct {
	userID uuid.UUID
	conn   Conn
	outbox chan interface{}
}

// Hub keeps one live connection per user and pushes lesson events to them.
// Each connection is written by its own goroutine, so a stalled client only
// ever delays itself.
type Hub struct {
	clients    map[uuid.UUID]*peer
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*peer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 256),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			log.Printf("Client registered: %s", client.UserID)
			h.add(client)
		case client := <-h.unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.clientsMu.Lock()
			if p, ok := h.clients[client.UserID]; ok && p.conn == client.Conn {
				h.removeLocked(p)
			}
			h.clientsMu.Unlock()
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Send queues payload for every connected recipient. It never blocks; when the
// queue is full the push is dropped since clients refetch on reconnect.
func (h *Hub) Send(recipients []uuid.UUID, payload interface{}) {
	select {
	case h.deliveries <- delivery{recipients: recipients, payload: payload}:
	default:
		log.Printf("⚠️ Websocket queue full, dropping push to %d recipient(s)", len(recipients))
	}
}

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) add(client *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if old, ok := h.clients[client.UserID]; ok {
		if old.conn == client.Conn {
			return
		}
		old.conn.Close()
		h.removeLocked(old)
	}

	p := &peer{userID: client.UserID, conn: client.Conn, outbox: make(chan interface{}, peerBuffer)}
	h.clients[client.UserID] = p
	go h.writePump(p)
}

func (h *Hub) deliver(d delivery) {
	var stalled []*peer
	seen := make(map[uuid.UUID]bool, len(d.recipients))

	h.clientsMu.RLock()
	for _, userID := range d.recipients {
		if userID == uuid.Nil || seen[userID] {
			continue
		}
		seen[userID] = true

		p, ok := h.clients[userID]
		if !ok {
			continue
		}
		select {
		case p.outbox <- d.payload:
		default:
			stalled = append(stalled, p)
		}
	}
	h.clientsMu.RUnlock()

	for _, p := range stalled {
		log.Printf("⚠️ Client %s is not keeping up, dropping connection", p.userID)
		p.conn.Close()
		h.remove(p)
	}
}

func (h *Hub) writePump(p *peer) {
	for payload := range p.outbox {
		err := p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err == nil {
			err = p.conn.WriteJSON(payload)
		}
		if err != nil {
			log.Printf("Error sending message to client %s: %v", p.userID, err)
			p.conn.Close()
			h.remove(p)
			return
		}
	}
}

func (h *Hub) remove(p *peer) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	h.removeLocked(p)
}

func (h *Hub) removeLocked(p *peer) {
	if h.clients[p.userID] != p {
		return
	}
	delete(h.clients, p.userID)
	close(p.outbox)
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for _, p := range h.clients {
		p.conn.Close()
		h.removeLocked(p)
	}
}
