package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dvla-io/dvla/util"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	socketWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// SocketClient is a middleman between the websocket connection and the hub.
type SocketClient struct {
	send chan []byte
}

func (c *SocketClient) writePump(ws *websocket.Conn) {
	defer ws.Close()

	for msg := range c.send {
		if err := ws.SetWriteDeadline(time.Now().Add(socketWriteTimeout)); err != nil {
			return
		}
		if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump discards incoming messages and unregisters the client once the connection closes
func (c *SocketClient) readPump(hub *SocketHub, ws *websocket.Conn) {
	defer hub.unregister(c)

	for {
		if _, _, err := ws.NextReader(); err != nil {
			return
		}
	}
}

// socketHandler attaches websocket handler to uri
func socketHandler(hub *SocketHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.ERROR.Println(err)
			return
		}

		client := &SocketClient{send: make(chan []byte, 256)}
		hub.register(client)

		go client.writePump(conn)
		go client.readPump(hub, conn)
	}
}

// SocketHub maintains the set of active clients and broadcasts messages to the clients.
type SocketHub struct {
	mu      sync.Mutex
	cache   *util.Cache
	clients map[*SocketClient]bool
}

// NewSocketHub creates a web socket hub that distributes vehicle values to connected clients
func NewSocketHub(cache *util.Cache) *SocketHub {
	return &SocketHub{
		cache:   cache,
		clients: make(map[*SocketClient]bool),
	}
}

// register adds the client and queues the cached state for it
func (h *SocketHub) register(client *SocketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true

	if h.cache == nil {
		return
	}

	for _, p := range h.cache.All() {
		msg, err := encode(p)
		if err != nil {
			continue
		}

		select {
		case client.send <- msg:
		default:
			return
		}
	}
}

func (h *SocketHub) unregister(client *SocketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// encode renders a parameter as single-key json object, vehicle values are keyed by "<vehicle>.<key>"
func encode(p util.Param) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		p.UniqueID(): p.Val,
	})
}

func (h *SocketHub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// slow client
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Run starts data distribution
func (h *SocketHub) Run(in <-chan util.Param) {
	for p := range in {
		msg, err := encode(p)
		if err != nil {
			log.ERROR.Printf("encode %s: %v", p.UniqueID(), err)
			continue
		}

		h.broadcast(msg)
	}
}
