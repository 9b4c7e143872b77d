package livesync

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

// conn wraps one websocket client. Messages are queued on send and written
// by writePump; the hub closes send when the client is dropped.
type conn struct {
	ws     *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

func newConn(ws *websocket.Conn, logger *slog.Logger) *conn {
	return &conn{
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
}

// readPump drains client frames until the connection fails. Clients only
// listen, so any payload is ignored.
func (c *conn) readPump() {
	defer c.ws.Close()
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("livesync client read failed", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *conn) writePump() {
	defer c.ws.Close()
	for message := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			c.logger.Debug("livesync client write failed", slog.Any("error", err))
			return
		}
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
