package websocket

import (
	"realtime-chat-be/internal/entity"

	"github.com/google/uuid"
)

const (
	PublicRoomName    = "public_chat"
	privateRoomPrefix = "private_chat_"
	userRoomPrefix    = "user_"
)

type RoomKind int

const (
	RoomPublic RoomKind = iota
	RoomPrivate
	RoomUser
)

// Room describes a join target together with who may hold it. Membership
// itself lives in the Hub.
type Room struct {
	Kind         RoomKind
	Name         string
	Participants [2]uuid.UUID
	Owner        uuid.UUID
}

func PublicRoom() Room {
	return Room{Kind: RoomPublic, Name: PublicRoomName}
}

func PrivateRoomName(chatId uuid.UUID) string {
	return privateRoomPrefix + chatId.String()
}

// PrivateRoom is the room of the conversation between a and b.
func PrivateRoom(a, b uuid.UUID) Room {
	low, high := entity.OrderedPair(a, b)
	return Room{
		Kind:         RoomPrivate,
		Name:         PrivateRoomName(entity.PrivateChatID(low, high)),
		Participants: [2]uuid.UUID{low, high},
	}
}

func UserRoomName(userId uuid.UUID) string {
	return userRoomPrefix + userId.String()
}

func UserRoom(userId uuid.UUID) Room {
	return Room{Kind: RoomUser, Name: UserRoomName(userId), Owner: userId}
}

// Allows reports whether identity is entitled to hold the room.
func (r Room) Allows(identity entity.Identity) bool {
	switch r.Kind {
	case RoomPublic:
		return true
	case RoomPrivate:
		if identity.IsAnonymous() {
			return false
		}
		return identity.UserId == r.Participants[0] || identity.UserId == r.Participants[1]
	case RoomUser:
		return !identity.IsAnonymous() && identity.UserId == r.Owner
	default:
		return false
	}
}
