package handler

import (
	"errors"

	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"
	internalWS "realtime-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	unread service.IUnreadService
	tokens service.ITokenService
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatHandler(unread service.IUnreadService, tokens service.ITokenService, hub *internalWS.Hub, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		unread: unread,
		tokens: tokens,
		hub:    hub,
		logger: log,
	}
}

func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)

	auth := serverutils.JwtMiddleware(h.tokens)
	router.Get("/chats", auth, h.ListChats)
	router.Post("/tokens/revoke", auth, h.RevokeToken)
}

func (h *ChatHandler) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{
		"sessions": h.hub.SessionCount(),
	}))
}

// ListChats returns the caller's private chats with unread counts, most
// recently active first.
func (h *ChatHandler) ListChats(ctx *fiber.Ctx) error {
	identity, ok := serverutils.CurrentIdentity(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Unauthorized"))
	}

	chats, err := h.unread.ListChats(ctx.UserContext(), identity.UserId)
	if err != nil {
		h.logger.Error("CHAT_API", "Failed to list chats", map[string]interface{}{
			"user_id": identity.UserId.String(),
			"error":   err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(fiber.StatusInternalServerError, "Failed to load chats"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chats", chats))
}

// RevokeToken blocks the bearer token of the request. Connections already
// established with it stay open.
func (h *ChatHandler) RevokeToken(ctx *fiber.Ctx) error {
	token := ctx.Get("Authorization")[7:]
	if err := h.tokens.Revoke(ctx.UserContext(), token); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, service.ErrAuthentication) {
			status = fiber.StatusUnauthorized
		}
		return ctx.Status(status).JSON(serverutils.ErrorResponse(status, service.ClientMessage(err)))
	}
	return ctx.JSON(serverutils.SuccessResponse("Token revoked", nil))
}
