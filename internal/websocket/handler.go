package websocket

import (
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs a chat session on c until the peer goes away.
func ServeWs(c *websocket.Conn, chat service.IChatService, userID *int, log logger.ILogger) {
	client := NewClient(c, chat, userID, log)
	log.Info("WS", "Chat connection opened", map[string]interface{}{"user_id": userID})
	client.serve()
	log.Info("WS", "Chat connection closed", map[string]interface{}{"user_id": userID})
}
