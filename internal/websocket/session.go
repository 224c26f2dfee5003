package websocket

import (
	"sort"

	"realtime-chat-be/internal/entity"
)

// Peer is the outbound side of one connection. Send must never block; it
// reports false when the frame could not be queued.
type Peer interface {
	Send(frame []byte) bool
	Close()
}

type session struct {
	connID   string
	identity entity.Identity
	rooms    map[string]struct{}
	peer     Peer
}

// Session is a point-in-time copy of a registered connection.
type Session struct {
	ConnID   string
	Identity entity.Identity
	Rooms    []string
}

func (s *session) snapshot() Session {
	rooms := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		rooms = append(rooms, name)
	}
	sort.Strings(rooms)
	return Session{
		ConnID:   s.connID,
		Identity: s.identity,
		Rooms:    rooms,
	}
}

func (s Session) Holds(roomName string) bool {
	for _, name := range s.Rooms {
		if name == roomName {
			return true
		}
	}
	return false
}
