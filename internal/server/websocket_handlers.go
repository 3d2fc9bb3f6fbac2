package server

import (
	"encoding/json"
	"log/slog"

	"socialnova/internal/middleware"
	"socialnova/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler streams the caller's auth events and every broadcast post
// event. Clients only listen; inbound frames are read to service pings.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals(middleware.LocalUserID).(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, errorFrame("unauthorized"))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, errorFrame(err.Error()))
			_ = conn.Close()
			return
		}

		unsubscribe := s.authEvents.Subscribe(userID, func(ev notifications.AuthEvent) {
			msg, err := notifications.Encode(notifications.EventAuth, ev)
			if err != nil {
				return
			}
			client.TrySend(msg)
		})
		defer unsubscribe()

		if hello, err := notifications.Encode("connected", fiber.Map{"user_id": userID}); err == nil {
			client.TrySend(hello)
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// errorFrame is the JSON text frame sent before closing a rejected socket.
func errorFrame(msg string) []byte {
	raw, err := json.Marshal(fiber.Map{"error": msg})
	if err != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return raw
}
