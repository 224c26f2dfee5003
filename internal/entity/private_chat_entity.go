package entity

import (
	"time"

	"github.com/google/uuid"
)

// privateChatNamespace seeds the name-based chat ids. Changing it orphans
// every existing chat row.
var privateChatNamespace = uuid.MustParse("6f1c2d3e-8a9b-4c5d-9e0f-1a2b3c4d5e6f")

type PrivateChat struct {
	Id        uuid.UUID
	UserAId   uuid.UUID
	UserBId   uuid.UUID
	CreatedAt time.Time
}

// OrderedPair returns the two ids with the lexically smaller one first.
func OrderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() <= b.String() {
		return a, b
	}
	return b, a
}

// PrivateChatID derives the id of the conversation between a and b. The
// result does not depend on argument order.
func PrivateChatID(a, b uuid.UUID) uuid.UUID {
	low, high := OrderedPair(a, b)
	return uuid.NewSHA1(privateChatNamespace, []byte(low.String()+":"+high.String()))
}

// NewPrivateChat builds the chat row for a pair without touching the store.
func NewPrivateChat(a, b uuid.UUID) *PrivateChat {
	low, high := OrderedPair(a, b)
	return &PrivateChat{
		Id:      PrivateChatID(low, high),
		UserAId: low,
		UserBId: high,
	}
}

func (c *PrivateChat) HasParticipant(userId uuid.UUID) bool {
	return userId != uuid.Nil && (c.UserAId == userId || c.UserBId == userId)
}

// Counterpart returns the participant that is not userId.
func (c *PrivateChat) Counterpart(userId uuid.UUID) uuid.UUID {
	if c.UserAId == userId {
		return c.UserBId
	}
	return c.UserAId
}
