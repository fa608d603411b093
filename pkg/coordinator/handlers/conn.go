package handlers

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn adapts *websocket.Conn to registry.Conn. Gorilla connections allow
// only one concurrent writer, so every write goes through the mutex; the
// broadcaster, the driver and the ping loop all share one of these.
type wsConn struct {
	mu           sync.Mutex
	ws           *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(ws *websocket.Conn, writeTimeout time.Duration) *wsConn {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &wsConn{ws: ws, writeTimeout: writeTimeout}
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeTimeout))
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
