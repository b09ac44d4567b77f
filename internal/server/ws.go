package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// hub fans broadcast messages out to every connected observer. Observers
// that cannot keep up are dropped rather than allowed to stall the rest.
// A joining observer is greeted with the current top-of-book so it does not
// sit on an empty screen until the next broadcast tick.
type hub struct {
	observers map[*client]struct{}
	join      chan *client
	leave     chan *client
	broadcast chan []byte

	greeting func() []byte
	logger   *slog.Logger
}

type client struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

func newHub(logger *slog.Logger, greeting func() []byte) *hub {
	return &hub{
		observers: map[*client]struct{}{},
		join:      make(chan *client),
		leave:     make(chan *client),
		broadcast: make(chan []byte, 256),
		greeting:  greeting,
		logger:    logger,
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.join:
			h.observers[c] = struct{}{}
			c.send <- h.greeting()
		case c := <-h.leave:
			if _, ok := h.observers[c]; ok {
				delete(h.observers, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.observers {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.observers, c)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	HandshakeTimeout:  10 * time.Second,
	ReadBufferSize:    4096,
	WriteBufferSize:   4096,
	CheckOrigin:       func(r *http.Request) bool { return true }, // local dashboard
	EnableCompression: true,
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade", slog.String("err", err.Error()))
		return
	}
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.join <- c
	go c.writePump()
	go c.readPump()
}

// readPump discards everything the observer sends; the stream is one-way.
// It exists to service pongs and to notice the peer going away.
func (c *client) readPump() {
	defer func() {
		c.hub.leave <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(25 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func marshalWS(t string, v any) []byte {
	b, _ := json.Marshal(wsMessage{Type: t, Data: v})
	return b
}
