package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// MessageParcelStatus is the websocket message type for parcel status changes.
const MessageParcelStatus = "parcel_status"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer and the token check.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ParcelStatusUpdate is pushed to the parcel owner after a status change.
type ParcelStatusUpdate struct {
	ParcelID              string `json:"parcelId"`
	Email                 string `json:"email"`
	Status                string `json:"status"`
	DeliveryManID         string `json:"deliveryManId,omitempty"`
	EstimatedDeliveryDate string `json:"estimatedDeliveryDate,omitempty"`
}

// Client is one websocket connection of a signed-in user.
type Client struct {
	Email string
	conn  *websocket.Conn
	send  chan []byte
	hub   *Hub
}

// Hub tracks connected clients by email.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.Email]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.Email] = set
	}
	set[c] = struct{}{}
	h.logger.Debug().Str("email", c.Email).Msg("websocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.Email]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.Email)
	}
	h.logger.Debug().Str("email", c.Email).Msg("websocket client disconnected")
}

// SendToUser queues message for every client of email and returns how many
// clients it reached. Clients whose buffer is full are dropped.
func (h *Hub) SendToUser(email string, message []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for c := range h.clients[email] {
		select {
		case c.send <- message:
			sent++
		default:
			h.logger.Warn().Str("email", email).Msg("websocket client too slow, dropping")
			c.conn.Close()
			h.removeLocked(c)
		}
	}
	return sent
}

func (h *Hub) SendParcelStatus(u ParcelStatusUpdate) error {
	data, err := json.Marshal(WebSocketMessage{Type: MessageParcelStatus, Data: u})
	if err != nil {
		return err
	}
	h.SendToUser(u.Email, data)
	return nil
}

// ConnectedClients returns the number of open connections.
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// ServeWS upgrades the request and registers the connection under email.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, email string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{Email: email, conn: conn, send: make(chan []byte, sendBuffer), hub: h}
	h.register(c)

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump only watches for the peer going away; clients never send data.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("email", c.Email).Msg("websocket read failed")
			}
			return
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
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Warn().Err(err).Str("email", c.Email).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
