package controller

import (
	"bufio"
	"context"
	"encoding/json"

	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/dto"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/serverutils"
	"library-assistant-be/internal/service"
	internalWS "library-assistant-be/internal/websocket"
	"library-assistant-be/pkg/rag/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
	Socket(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	logger  logger.ILogger
}

func NewChatController(service service.IChatService, log logger.ILogger) IChatController {
	return &chatController{service: service, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.OptionalJwtMiddleware)
	h.Post("", c.Stream)
	h.Post("/sync", c.Sync)
	h.Get("/ws", c.Socket)
}

// EncodeChunk renders one event for the plain-text transport. An empty card
// list produces no trailer.
func EncodeChunk(e stream.Event) ([]byte, error) {
	if e.Kind != stream.KindBooks {
		return []byte(e.Text), nil
	}
	if len(e.Books) == 0 {
		return nil, nil
	}
	cards, err := json.Marshal(e.Books)
	if err != nil {
		return nil, err
	}
	return append([]byte(constant.BookCardsDelimiter), cards...), nil
}

func parseChatRequest(ctx *fiber.Ctx) (*dto.ChatRequest, error) {
	req := new(dto.ChatRequest)
	if err := ctx.BodyParser(req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *chatController) Stream(ctx *fiber.Ctx) error {
	req, err := parseChatRequest(ctx)
	if err != nil {
		return err
	}
	userID := serverutils.UserID(ctx)
	parent := ctx.UserContext()

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(c.streamTurn(parent, req, userID))
	return nil
}

// streamTurn runs after the handler has returned, so it only sees values
// captured from the request.
func (c *chatController) streamTurn(parent context.Context, req *dto.ChatRequest, userID *int) fasthttp.StreamWriter {
	return func(w *bufio.Writer) {
		turnCtx, cancel := context.WithCancel(parent)
		defer cancel()

		_, err := c.service.Stream(turnCtx, req, userID, service.TransportHTTP, func(e stream.Event) error {
			chunk, err := EncodeChunk(e)
			if err != nil || len(chunk) == 0 {
				return err
			}
			if _, err := w.Write(chunk); err != nil {
				cancel()
				return err
			}
			if err := w.Flush(); err != nil {
				cancel()
				return err
			}
			return nil
		})
		if err != nil {
			c.logger.Error("CHAT", "Streaming turn failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (c *chatController) Sync(ctx *fiber.Ctx) error {
	req, err := parseChatRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), req, serverutils.UserID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate reply", res))
}

func (c *chatController) Socket(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	userID := serverutils.UserID(ctx)
	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(conn, c.service, userID, c.logger)
	})(ctx)
}
