// internal/matching/websocket.go

package matching

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/kolade-dev/heartlink-backend/internal/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Configure origin checking in production
		return true
	},
}

// Hub pushes match events to connected clients. It implements Notifier
// so the service can announce matches without knowing about websockets.
type Hub struct {
	clients    map[int64]*Client
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	userID int64
}

type Message struct {
	Type   string      `json:"type"`
	UserID int64       `json:"user_id"`
	Data   interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		broadcast:  make(chan Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			log.Printf("User %d connected", client.userID)

		case client := <-h.unregister:
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
				log.Printf("User %d disconnected", client.userID)
			}

		case message := <-h.broadcast:
			if client, ok := h.clients[message.UserID]; ok {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client.userID)
				}
			}
		}
	}
}

// OnMatchCreated implements Notifier. Both sides of the match get a
// new_match event.
func (h *Hub) OnMatchCreated(matchID, user1ID, user2ID int64) {
	data := map[string]int64{"match_id": matchID}

	h.broadcast <- Message{Type: "new_match", UserID: user1ID, Data: data}
	h.broadcast <- Message{Type: "new_match", UserID: user2ID, Data: data}
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan Message, 256),
		userID: userID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteJSON(message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
