package livecount

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one dashboard connection, scoped to a single mess.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	MessID string
}

type broadcastMsg struct {
	MessID string
	Data   []byte
}

// Hub fans counter events out to every dashboard watching a mess. Rooms are
// keyed by mess id; a mess with no watchers costs nothing.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	stop       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.MessID] == nil {
				h.rooms[c.MessID] = make(map[*Client]bool)
			}
			h.rooms[c.MessID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.MessID]; conns != nil {
				if conns[c] {
					delete(conns, c)
					close(c.Send)
				}
				if len(conns) == 0 {
					delete(h.rooms, c.MessID)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.MessID] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.rooms[m.MessID], c)
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and closes every client send channel.
func (h *Hub) Stop() {
	close(h.stop)
}

// Broadcast queues data for every client watching messID. Safe to call from
// any goroutine; this is the side the counter worker drives.
func (h *Hub) Broadcast(messID string, data []byte) {
	h.broadcast <- broadcastMsg{MessID: messID, Data: data}
}
