// handlers/events.go - Websocket feed of progression events
package handlers

import (
	"time"

	"discjourney/services"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 15 * time.Second
)

// EventFeed relays the caller's tier-up and unlock events. Clients only
// read; anything they send is discarded.
func (h *Handler) EventFeed(conn *websocket.Conn) {
	userID, ok := toUserID(conn.Locals("userId"))
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated"),
			time.Now().Add(writeWait))
		return
	}

	events, cancel := h.hub.Subscribe(userID)
	defer cancel()

	h.log.Debug("event feed connected", zap.Uint("user_id", userID))
	defer h.log.Debug("event feed disconnected", zap.Uint("user_id", userID))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := h.send(conn, ev); err != nil {
				h.log.Debug("event write failed", zap.Uint("user_id", userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, ev services.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}

func toUserID(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case float64:
		return uint(id), id > 0
	case uint:
		return id, id > 0
	}
	return 0, false
}
