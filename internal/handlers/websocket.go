package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zela-wheel-backend/internal/middleware"
	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/services"
)

const (
	MessageFrame   = "FRAME"
	MessageSettled = "SETTLED"
	MessagePrize   = "PRIZE"
	MessageState   = "STATE"
	MessagePing    = "PING"
	MessagePong    = "PONG"

	writeWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	PlayerID string
	Conn     *websocket.Conn
}

type Message struct {
	Type     string      `json:"type"`
	PlayerID string      `json:"-"`
	Data     interface{} `json:"data,omitempty"`
}

// WebSocketHub fans renderer events out to the player's connections. It implements
// services.Renderer; all socket writes happen on the run goroutine.
type WebSocketHub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	logger     *zap.Logger
}

func NewWebSocketHub(logger *zap.Logger) *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}

	go hub.run()

	return hub
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			conns, ok := hub.clients[client.PlayerID]
			if !ok {
				conns = make(map[*Client]struct{})
				hub.clients[client.PlayerID] = conns
			}
			conns[client] = struct{}{}
			hub.logger.Debug("client registered", zap.String("player_id", client.PlayerID))

		case client := <-hub.unregister:
			if conns, ok := hub.clients[client.PlayerID]; ok {
				delete(conns, client)
				if len(conns) == 0 {
					delete(hub.clients, client.PlayerID)
				}
				hub.logger.Debug("client unregistered", zap.String("player_id", client.PlayerID))
			}

		case message := <-hub.broadcast:
			hub.deliver(message)

		case <-hub.done:
			for _, conns := range hub.clients {
				for client := range conns {
					client.Conn.Close()
				}
			}
			return
		}
	}
}

func (hub *WebSocketHub) deliver(message *Message) {
	for client := range hub.clients[message.PlayerID] {
		client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.Conn.WriteJSON(message); err != nil {
			hub.logger.Debug("websocket write failed", zap.String("player_id", client.PlayerID), zap.Error(err))
		}
	}
}

func (hub *WebSocketHub) add(client *Client) {
	select {
	case hub.register <- client:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

// send drops frames when the hub is behind. Every other message type waits for room,
// so the settled render and the prize always reach the player.
func (hub *WebSocketHub) send(message *Message) {
	if message.Type == MessageFrame {
		select {
		case hub.broadcast <- message:
		default:
			hub.logger.Debug("renderer frame dropped", zap.String("player_id", message.PlayerID))
		}
		return
	}

	select {
	case hub.broadcast <- message:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) Render(playerID string, frame models.Frame) {
	hub.send(&Message{Type: MessageFrame, PlayerID: playerID, Data: frame})
}

func (hub *WebSocketHub) Settled(playerID string, settlement models.Settlement) {
	hub.send(&Message{Type: MessageSettled, PlayerID: playerID, Data: settlement})
}

func (hub *WebSocketHub) Prize(playerID string, claim models.PrizeClaim) {
	hub.send(&Message{Type: MessagePrize, PlayerID: playerID, Data: claim})
}

func (hub *WebSocketHub) Close() {
	close(hub.done)
}

var _ services.Renderer = (*WebSocketHub)(nil)

type WebSocketHandler struct {
	hub     *WebSocketHub
	manager *services.SessionManager
	logger  *zap.Logger
}

func NewWebSocketHandler(hub *WebSocketHub, manager *services.SessionManager, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, manager: manager, logger: logger}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	playerID := c.GetString(middleware.KeyPlayerID)

	session, err := h.manager.Session(playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session", "details": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := &Client{PlayerID: playerID, Conn: conn}
	h.hub.add(client)

	defer func() {
		h.hub.remove(client)
		conn.Close()
	}()

	h.hub.send(&Message{Type: MessageState, PlayerID: playerID, Data: session.State(c.Request.Context())})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket error", zap.String("player_id", playerID), zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case MessagePing:
			h.hub.send(&Message{Type: MessagePong, PlayerID: playerID, Data: gin.H{"timestamp": time.Now().Unix()}})
		case MessageState:
			h.hub.send(&Message{Type: MessageState, PlayerID: playerID, Data: session.State(c.Request.Context())})
		}
	}
}
