package api

import (
	"context"
	"net/http"
	"time"

	"smarthome-sim/internal/store"
	"smarthome-sim/internal/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Event is one message of the change feed
type Event struct {
	Type    string         `json:"type"`
	Changed string         `json:"changed"`
	State   store.Snapshot `json:"state"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the panel is served from anywhere on the LAN
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterEventRoutes serves the websocket change feed. A client first
// receives the full snapshot and then one event per coalesced change.
func RegisterEventRoutes(r gin.IRoutes, logger *zap.Logger) {
	r.GET("/ws", func(c *gin.Context) {
		eng := middleware.Engine(c)
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		sub := eng.Subscribe()
		defer sub.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// reader: detects close and answers pongs
		go func() {
			defer cancel()
			conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		send := func(ev Event) error {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			return conn.WriteJSON(ev)
		}

		if err := send(Event{Type: "snapshot", Changed: "all", State: eng.Snapshot()}); err != nil {
			return
		}

		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-sub.Ready():
				change := sub.Take()
				if change == 0 {
					continue
				}
				if err := send(Event{Type: "change", Changed: change.String(), State: eng.Snapshot()}); err != nil {
					logger.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}
	})
}
