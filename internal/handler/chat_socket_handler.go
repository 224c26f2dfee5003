package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"
	internalWS "realtime-chat-be/internal/websocket"
	"realtime-chat-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var errAnonymousDisabled = errors.New("anonymous connections are disabled")

type ChatSocketHandler struct {
	hub       *internalWS.Hub
	tokens    service.ITokenService
	messages  service.IMessageService
	chats     service.IChatService
	publisher events.Publisher
	cfg       config.ChatConfig
	logger    logger.ILogger
}

func NewChatSocketHandler(
	hub *internalWS.Hub,
	tokens service.ITokenService,
	messages service.IMessageService,
	chats service.IChatService,
	publisher events.Publisher,
	cfg config.ChatConfig,
	log logger.ILogger,
) *ChatSocketHandler {
	return &ChatSocketHandler{
		hub:       hub,
		tokens:    tokens,
		messages:  messages,
		chats:     chats,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

func (h *ChatSocketHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}

// bearerToken reads the token from the query string first (browsers cannot
// set headers on an upgrade), then from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}

// Authenticate resolves who a handshake speaks for. No token means an
// anonymous identity when the deployment allows it.
func (h *ChatSocketHandler) Authenticate(ctx context.Context, token string) (entity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		if !h.cfg.AllowAnonymous {
			return entity.Identity{}, errAnonymousDisabled
		}
		return entity.AnonymousIdentity(), nil
	}
	return h.tokens.Authenticate(ctx, token)
}

// ServeWs authenticates the handshake and upgrades. Failed authentication is
// answered with 401 and no session is created.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	identity, err := h.Authenticate(c.UserContext(), bearerToken(c))
	if err != nil {
		h.logger.Warn("CHAT_WS", "Handshake rejected", map[string]interface{}{
			"ip":    c.IP(),
			"error": err.Error(),
		})
		status, message := handshakeFailure(err)
		return c.Status(status).JSON(serverutils.ErrorResponse(status, message))
	}

	return websocket.New(func(conn *websocket.Conn) {
		client := internalWS.NewClient(conn, h.cfg.SendBufferSize, h.cfg.MaxFrameSize, h.logger)

		connID, err := h.Admit(identity, client)
		if err != nil {
			h.logger.Error("CHAT_WS", "Failed to admit connection", map[string]interface{}{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h.logger.Info("CHAT_WS", "Starting WebSocket session", map[string]interface{}{
			"conn_id": connID,
			"user_id": identity.UserId.String(),
		})
		client.Serve(ctx, connID, h)
		h.logger.Info("CHAT_WS", "WebSocket session ended", map[string]interface{}{"conn_id": connID})
	})(c)
}

// handshakeFailure maps an authentication error to the HTTP answer. Store
// outages are not the client's fault and are not described to it.
func handshakeFailure(err error) (int, string) {
	if errors.Is(err, service.ErrPersistence) {
		return fiber.StatusServiceUnavailable, "Authentication is temporarily unavailable"
	}
	return fiber.StatusUnauthorized, service.ClientMessage(err)
}

// Admit registers an authenticated connection, joins the user's own room and
// greets it.
func (h *ChatSocketHandler) Admit(identity entity.Identity, peer internalWS.Peer) (string, error) {
	connID := uuid.NewString()
	if err := h.hub.Register(connID, identity, peer); err != nil {
		return "", err
	}

	if !identity.IsAnonymous() {
		if _, err := h.hub.Join(connID, internalWS.UserRoom(identity.UserId)); err != nil {
			h.hub.Unregister(connID)
			return "", err
		}
		h.publish(events.UserConnected, identity)
	}

	h.hub.Emit(connID, internalWS.EventConnected, dto.NoticePayload{Message: "Welcome " + identity.Username + "!"})
	return connID, nil
}

func (h *ChatSocketHandler) Disconnect(connID string) {
	session, ok := h.hub.Lookup(connID)
	h.hub.Unregister(connID)
	if ok && !session.Identity.IsAnonymous() {
		h.publish(events.UserDisconnected, session.Identity)
	}
}

func (h *ChatSocketHandler) publish(eventType string, identity entity.Identity) {
	if h.publisher == nil {
		return
	}
	event := events.New(eventType, map[string]interface{}{
		"user_id":  identity.UserId.String(),
		"username": identity.Username,
	})
	if err := h.publisher.Publish(context.Background(), event); err != nil {
		h.logger.Warn("CHAT_WS", "Failed to publish domain event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

// Dispatch handles one inbound frame. Frames of a connection arrive one at a
// time from its read loop.
func (h *ChatSocketHandler) Dispatch(ctx context.Context, connID string, raw []byte) {
	session, ok := h.hub.Lookup(connID)
	if !ok {
		return
	}

	frame, err := internalWS.Decode(raw)
	if err != nil || frame.Event == "" {
		h.reply(connID, "Malformed frame")
		return
	}

	switch frame.Event {
	case internalWS.EventJoinPublic:
		h.joinPublic(session)
	case internalWS.EventLeavePublic:
		h.hub.Leave(connID, internalWS.PublicRoomName)
	case internalWS.EventSendPublicMessage:
		var req dto.SendPublicMessageRequest
		if h.bind(connID, frame, &req) {
			h.sendPublic(ctx, session, req.Content, nil)
		}
	case internalWS.EventSendPublicFile:
		var req dto.SendPublicFileRequest
		if h.bind(connID, frame, &req) {
			h.sendPublic(ctx, session, req.Content, &req.FilePayload)
		}
	case internalWS.EventJoinPrivate:
		var req dto.PrivatePeerRequest
		if h.bind(connID, frame, &req) {
			h.joinPrivate(ctx, session, req.OtherUserId)
		}
	case internalWS.EventLeavePrivate:
		var req dto.PrivatePeerRequest
		if h.bind(connID, frame, &req) && !session.Identity.IsAnonymous() {
			h.hub.Leave(connID, internalWS.PrivateRoom(session.Identity.UserId, req.OtherUserId).Name)
		}
	case internalWS.EventSendPrivateMessage:
		var req dto.SendPrivateMessageRequest
		if h.bind(connID, frame, &req) {
			h.sendPrivate(ctx, session, req.OtherUserId, req.Content, nil)
		}
	case internalWS.EventSendPrivateFile:
		var req dto.SendPrivateFileRequest
		if h.bind(connID, frame, &req) {
			h.sendPrivate(ctx, session, req.OtherUserId, req.Content, &req.FilePayload)
		}
	case internalWS.EventGetOnlineUsers:
		h.onlineUsers(connID)
	case internalWS.EventMarkChatRead:
		var req dto.MarkChatReadRequest
		if h.bind(connID, frame, &req) {
			h.markChatRead(ctx, session, req.ChatId)
		}
	case internalWS.EventMarkPublicRead:
		h.hub.Emit(connID, internalWS.EventPublicChatMarkedRead, nil)
	default:
		h.reply(connID, "Unknown event: "+frame.Event)
	}
}

// bind decodes the frame data into req and checks its validate tags,
// answering the connection on failure.
func (h *ChatSocketHandler) bind(connID string, frame internalWS.Frame, req interface{}) bool {
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, req); err != nil {
			h.reply(connID, "Invalid payload for "+frame.Event)
			return false
		}
	}
	if err := serverutils.ValidateStruct(req); err != nil {
		h.reply(connID, err.Error())
		return false
	}
	return true
}

func (h *ChatSocketHandler) reply(connID, message string) {
	h.hub.Emit(connID, internalWS.EventError, dto.NoticePayload{Message: message})
}

// reject reports err to the issuing connection. Store failures are not
// described to clients.
func (h *ChatSocketHandler) reject(connID string, err error, storeFailure string) {
	if errors.Is(err, service.ErrPersistence) {
		h.reply(connID, storeFailure)
		return
	}
	h.reply(connID, service.ClientMessage(err))
}

func (h *ChatSocketHandler) joinPublic(session internalWS.Session) {
	if _, err := h.hub.Join(session.ConnID, internalWS.PublicRoom()); err != nil {
		h.reply(session.ConnID, "Cannot join public chat")
	}
}

func (h *ChatSocketHandler) sendPublic(ctx context.Context, session internalWS.Session, content string, file *dto.FilePayload) {
	if !session.Holds(internalWS.PublicRoomName) {
		h.reply(session.ConnID, "Not in public chat")
		return
	}

	msg, err := h.messages.SendPublic(ctx, session.Identity, content, file)
	if err != nil {
		h.reject(session.ConnID, err, "Failed to send message")
		return
	}

	event := internalWS.EventNewPublicMessage
	if msg.File != nil {
		event = internalWS.EventNewPublicFileMessage
	}
	h.hub.Broadcast(internalWS.PublicRoomName, event, msg, "")

	notice := dto.PublicMessageNotification{
		SenderId:   session.Identity.UserId,
		SenderName: msg.Username,
		Preview:    h.messages.Preview(msg),
		Timestamp:  msg.Timestamp,
	}
	for _, userId := range h.hub.UsersOutside(internalWS.PublicRoomName) {
		if userId == session.Identity.UserId {
			continue
		}
		h.hub.SendToUser(userId, internalWS.EventPublicMessageNotification, notice)
	}
}

func (h *ChatSocketHandler) joinPrivate(ctx context.Context, session internalWS.Session, otherUserId uuid.UUID) {
	other, chatId, err := h.chats.ResolvePeer(ctx, session.Identity, otherUserId)
	if err != nil {
		h.reject(session.ConnID, err, "Failed to join private chat")
		return
	}

	if _, err := h.hub.Join(session.ConnID, internalWS.PrivateRoom(session.Identity.UserId, other.Id)); err != nil {
		h.reply(session.ConnID, "Cannot join this private chat")
		return
	}
	h.hub.Emit(session.ConnID, internalWS.EventJoinedPrivate, dto.JoinedPrivatePayload{
		ChatId:    chatId,
		OtherUser: dto.UserSummary{Id: other.Id, Username: other.Username, AvatarURL: other.AvatarURL},
	})
}

func (h *ChatSocketHandler) sendPrivate(ctx context.Context, session internalWS.Session, otherUserId uuid.UUID, content string, file *dto.FilePayload) {
	if session.Identity.IsAnonymous() {
		h.reply(session.ConnID, "Sign in to send messages")
		return
	}
	room := internalWS.PrivateRoom(session.Identity.UserId, otherUserId)
	if !session.Holds(room.Name) {
		h.reply(session.ConnID, "Not in this private chat")
		return
	}

	delivery, err := h.messages.SendPrivate(ctx, session.Identity, otherUserId, content, file)
	if err != nil {
		h.reject(session.ConnID, err, "Failed to send message")
		return
	}

	event := internalWS.EventNewPrivateMessage
	if delivery.Message.File != nil {
		event = internalWS.EventNewPrivateFileMessage
	}
	h.hub.Broadcast(room.Name, event, delivery.Message, "")

	h.hub.SendToUser(delivery.Recipient.Id, internalWS.EventUnreadCountUpdate, dto.UnreadCountUpdate{
		ChatId:        delivery.ChatId,
		Count:         delivery.RecipientUnread,
		OtherUserId:   session.Identity.UserId,
		OtherUsername: delivery.Message.Username,
	})
}

func (h *ChatSocketHandler) onlineUsers(connID string) {
	members := h.hub.Presence(internalWS.PublicRoomName)
	users := make([]dto.OnlineUser, 0, len(members))
	for _, m := range members {
		u := dto.OnlineUser{Username: m.Username}
		if m.UserId != uuid.Nil {
			id := m.UserId
			u.Id = &id
		}
		users = append(users, u)
	}
	h.hub.Emit(connID, internalWS.EventOnlineUsers, dto.OnlineUsersPayload{Users: users})
}

func (h *ChatSocketHandler) markChatRead(ctx context.Context, session internalWS.Session, chatId uuid.UUID) {
	result, err := h.chats.MarkRead(ctx, session.Identity, chatId)
	if err != nil {
		h.reject(session.ConnID, err, "Failed to mark chat as read")
		return
	}

	if result.HadUnread {
		h.hub.SendToUser(result.Counterpart, internalWS.EventMessageReadReceipt, dto.ReadReceipt{
			ChatId:     result.Chat.Id,
			ReaderId:   session.Identity.UserId,
			ReaderName: session.Identity.Username,
		})
	}
	h.hub.Emit(session.ConnID, internalWS.EventChatMarkedRead, dto.ChatMarkedRead{ChatId: result.Chat.Id})
}
