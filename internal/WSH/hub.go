package wsh

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rugby-scorekeeper/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Client: подключённое табло. С пустым matchID получает все матчи.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	matchID string
}

func (c *Client) wants(n session.Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchID == "" || c.matchID == n.MatchID
}

// Hub рассылает уведомления сессий всем подключённым клиентам.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan session.Notification
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *zap.SugaredLogger

	mu    sync.RWMutex
	count int
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan session.Notification, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.setCount()
			return

		case c := <-h.register:
			h.clients[c] = true
			h.setCount()
			h.log.Debugw("Клиент подключён", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.setCount()
			h.log.Debugw("Клиент отключён", "clients", len(h.clients))

		case n := <-h.broadcast:
			data, err := json.Marshal(n)
			if err != nil {
				h.log.Errorw("Не удалось сериализовать уведомление", "error", err)
				continue
			}
			for c := range h.clients {
				if !c.wants(n) {
					continue
				}
				select {
				case c.send <- data:
				default:
					// медленный клиент
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.setCount()
		}
	}
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// Clients: число подключённых клиентов.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Notify реализует session.Notifier и никогда не блокирует сессию.
func (h *Hub) Notify(n session.Notification) {
	select {
	case h.broadcast <- n:
	default:
		h.log.Warnw("Очередь websocket переполнена", "match", n.MatchID, "kind", n.Kind)
	}
}

type clientMessage struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warnw("Ошибка websocket", "error", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "subscribe":
			c.mu.Lock()
			c.matchID = msg.MatchID
			c.mu.Unlock()
		case "unsubscribe":
			c.mu.Lock()
			c.matchID = ""
			c.mu.Unlock()
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
