package websocket

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrSessionExists = errors.New("session already registered")
	ErrNoSession     = errors.New("session not registered")
	ErrNotEntitled   = errors.New("not entitled to join room")
)

const relayPublishTimeout = 2 * time.Second

// Member is one entry of a presence listing.
type Member struct {
	UserId   uuid.UUID
	Username string
}

// Hub owns every live session of this process and the room memberships
// derived from them. A room exists exactly while its member set is non-empty.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	rooms    map[string]map[string]struct{}

	// Cross-instance fanout; nil when running a single instance.
	relay      Relay
	instanceID string

	logger logger.ILogger
}

func NewHub(relay Relay, log logger.ILogger) *Hub {
	return &Hub{
		sessions:   make(map[string]*session),
		rooms:      make(map[string]map[string]struct{}),
		relay:      relay,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run delivers envelopes published by other instances until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	if h.relay == nil {
		return
	}
	h.logger.Info("HUB", "Cluster relay started", map[string]interface{}{"instance_id": h.instanceID})
	err := h.relay.Subscribe(ctx, func(env Envelope) {
		if env.Origin == h.instanceID {
			return
		}
		h.deliverLocal(env.Room, env.Frame, "")
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Error("HUB", "Cluster relay stopped", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) Register(connID string, identity entity.Identity, peer Peer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sessions[connID]; exists {
		return fmt.Errorf("%w: %s", ErrSessionExists, connID)
	}
	h.sessions[connID] = &session{
		connID:   connID,
		identity: identity,
		rooms:    make(map[string]struct{}),
		peer:     peer,
	}
	h.logger.Info("HUB", "Session registered", map[string]interface{}{
		"conn_id":  connID,
		"user_id":  identity.UserId.String(),
		"username": identity.Username,
	})
	return nil
}

func (h *Hub) Lookup(connID string) (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return s.snapshot(), true
}

// Unregister leaves every room the session held, announcing public room
// departures, then forgets the session. Unknown ids are ignored.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	s, ok := h.sessions[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	_, wasPublic := s.rooms[PublicRoomName]
	for name := range s.rooms {
		h.removeMemberLocked(name, connID)
	}
	delete(h.sessions, connID)
	h.mu.Unlock()

	if wasPublic {
		h.Broadcast(PublicRoomName, EventUserLeft, departureNotice(s.identity.Username), "")
	}
	h.logger.Info("HUB", "Session unregistered", map[string]interface{}{
		"conn_id": connID,
		"user_id": s.identity.UserId.String(),
	})
}

// Join adds the connection to room after checking entitlement. It reports
// false when the connection already held the room.
func (h *Hub) Join(connID string, room Room) (bool, error) {
	h.mu.Lock()
	s, ok := h.sessions[connID]
	if !ok {
		h.mu.Unlock()
		return false, ErrNoSession
	}
	if !room.Allows(s.identity) {
		h.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNotEntitled, room.Name)
	}
	if _, held := s.rooms[room.Name]; held {
		h.mu.Unlock()
		return false, nil
	}
	s.rooms[room.Name] = struct{}{}
	members, ok := h.rooms[room.Name]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room.Name] = members
	}
	members[connID] = struct{}{}
	username := s.identity.Username
	h.mu.Unlock()

	if room.Kind == RoomPublic {
		h.Broadcast(room.Name, EventUserJoined, arrivalNotice(username), connID)
	}
	return true, nil
}

// Leave removes the connection from the room. It reports false when the
// connection was not a member.
func (h *Hub) Leave(connID, roomName string) bool {
	h.mu.Lock()
	s, ok := h.sessions[connID]
	if !ok {
		h.mu.Unlock()
		return false
	}
	if _, held := s.rooms[roomName]; !held {
		h.mu.Unlock()
		return false
	}
	delete(s.rooms, roomName)
	h.removeMemberLocked(roomName, connID)
	username := s.identity.Username
	h.mu.Unlock()

	if roomName == PublicRoomName {
		h.Broadcast(roomName, EventUserLeft, departureNotice(username), connID)
	}
	return true
}

func (h *Hub) removeMemberLocked(roomName, connID string) {
	members, ok := h.rooms[roomName]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomName)
	}
}

// Broadcast delivers the event to every member of the room except
// excludeConnID, here and, through the relay, on other instances.
func (h *Hub) Broadcast(roomName, event string, payload interface{}, excludeConnID string) {
	frame, err := Encode(event, payload)
	if err != nil {
		h.logger.Error("HUB", "Failed to encode frame", map[string]interface{}{"event": event, "error": err.Error()})
		return
	}

	h.deliverLocal(roomName, frame, excludeConnID)

	if h.relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
		defer cancel()
		env := Envelope{Origin: h.instanceID, Room: roomName, Frame: frame}
		if err := h.relay.Publish(ctx, env); err != nil {
			h.logger.Warn("HUB", "Relay publish failed", map[string]interface{}{"room": roomName, "error": err.Error()})
		}
	}
}

// SendToUser targets every session of the user through their personal room.
func (h *Hub) SendToUser(userId uuid.UUID, event string, payload interface{}) {
	h.Broadcast(UserRoomName(userId), event, payload, "")
}

// Emit answers a single connection. It is never relayed.
func (h *Hub) Emit(connID, event string, payload interface{}) bool {
	frame, err := Encode(event, payload)
	if err != nil {
		h.logger.Error("HUB", "Failed to encode frame", map[string]interface{}{"event": event, "error": err.Error()})
		return false
	}

	h.mu.RLock()
	s, ok := h.sessions[connID]
	var peer Peer
	if ok {
		peer = s.peer
	}
	h.mu.RUnlock()

	if peer == nil {
		return false
	}
	return h.push(connID, peer, frame)
}

func (h *Hub) deliverLocal(roomName string, frame []byte, excludeConnID string) {
	type target struct {
		connID string
		peer   Peer
	}

	h.mu.RLock()
	members := h.rooms[roomName]
	targets := make([]target, 0, len(members))
	for connID := range members {
		if connID == excludeConnID {
			continue
		}
		if s, ok := h.sessions[connID]; ok {
			targets = append(targets, target{connID: connID, peer: s.peer})
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		h.push(t.connID, t.peer, frame)
	}
}

// push queues a frame without blocking. A peer that cannot keep up is closed;
// its read loop then unregisters it.
func (h *Hub) push(connID string, peer Peer, frame []byte) bool {
	if peer.Send(frame) {
		return true
	}
	h.logger.Warn("HUB", "Send buffer full, closing connection", map[string]interface{}{"conn_id": connID})
	peer.Close()
	return false
}

// Presence lists the members of a room, one entry per connection, ordered by
// display name.
func (h *Hub) Presence(roomName string) []Member {
	h.mu.RLock()
	members := make([]Member, 0, len(h.rooms[roomName]))
	for connID := range h.rooms[roomName] {
		if s, ok := h.sessions[connID]; ok {
			members = append(members, Member{UserId: s.identity.UserId, Username: s.identity.Username})
		}
	}
	h.mu.RUnlock()

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Username < members[j].Username
	})
	return members
}

// UsersOutside returns the connected, identified users none of whose
// sessions hold roomName.
func (h *Hub) UsersOutside(roomName string) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	inside := make(map[uuid.UUID]struct{})
	for connID := range h.rooms[roomName] {
		if s, ok := h.sessions[connID]; ok {
			inside[s.identity.UserId] = struct{}{}
		}
	}

	seen := make(map[uuid.UUID]struct{})
	var outside []uuid.UUID
	for _, s := range h.sessions {
		id := s.identity.UserId
		if id == uuid.Nil {
			continue
		}
		if _, ok := inside[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		outside = append(outside, id)
	}
	return outside
}

// SessionCount is used by the health endpoint.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown closes every peer. Their read loops unregister them.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	peers := make([]Peer, 0, len(h.sessions))
	for _, s := range h.sessions {
		peers = append(peers, s.peer)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		p.Close()
	}
	if h.relay != nil {
		if err := h.relay.Close(); err != nil {
			h.logger.Warn("HUB", "Relay close failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func arrivalNotice(username string) dto.PresencePayload {
	return dto.PresencePayload{Username: username, Message: username + " joined the chat"}
}

func departureNotice(username string) dto.PresencePayload {
	return dto.PresencePayload{Username: username, Message: username + " left the chat"}
}
