package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"library-assistant-be/internal/dto"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/serverutils"
	"library-assistant-be/internal/service"
	"library-assistant-be/pkg/rag/stream"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is a middleman between the websocket connection and the chat service.
// Turns on one connection run one at a time.
type Client struct {
	Conn *websocket.Conn

	// UserID is nil for anonymous connections.
	UserID *int

	// Buffered channel of outbound frames.
	Send chan []byte

	chat   service.IChatService
	logger logger.ILogger
	turns  chan *dto.ChatRequest
	busy   atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(conn *websocket.Conn, chat service.IChatService, userID *int, log logger.ILogger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 256),
		chat:   chat,
		logger: log,
		turns:  make(chan *dto.ChatRequest, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// readPump decodes inbound chat requests and queues them for runTurns.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		close(c.turns)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WS", "Unexpected close", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		req := new(dto.ChatRequest)
		if err := json.Unmarshal(message, req); err != nil {
			c.reject("Invalid request body")
			continue
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			c.reject(err.Error())
			continue
		}

		if !c.admit(req) {
			c.reject("A reply is still streaming")
		}
	}
}

// admit hands req to runTurns unless a turn is queued or streaming.
func (c *Client) admit(req *dto.ChatRequest) bool {
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	c.turns <- req
	return true
}

func (c *Client) reject(message string) {
	data, err := EncodeError(message)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	case <-c.ctx.Done():
	}
}

func (c *Client) emit(e stream.Event) error {
	data, err := EncodeEvent(e)
	if err != nil {
		return err
	}
	select {
	case c.Send <- data:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// runTurns owns Send and closes it once the connection is done.
func (c *Client) runTurns() {
	defer close(c.Send)

	for req := range c.turns {
		c.turn(req)
		c.busy.Store(false)
	}
}

func (c *Client) turn(req *dto.ChatRequest) {
	out, err := c.chat.Stream(c.ctx, req, c.UserID, service.TransportWebsocket, c.emit)
	if err != nil {
		c.logger.Error("WS", "Chat turn failed", map[string]interface{}{"error": err.Error()})
		c.reject("Failed to generate a reply")
		return
	}
	if data, err := EncodeDone(out.TurnID.String()); err == nil {
		select {
		case c.Send <- data:
		case <-c.ctx.Done():
		}
	}
}

// writePump pumps frames to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// frames are separate JSON documents, one per message
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.cancel()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}

// drain keeps runTurns from blocking on Send after writePump has gone.
func (c *Client) drain() {
	for range c.Send {
	}
}

func (c *Client) serve() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.writePump()
		c.drain()
	}()
	go func() {
		defer wg.Done()
		c.runTurns()
	}()
	c.readPump()
	wg.Wait()
}
