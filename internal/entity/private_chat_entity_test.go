package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrivateChatID_IsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, PrivateChatID(a, b), PrivateChatID(b, a))
	assert.NotEqual(t, PrivateChatID(a, b), PrivateChatID(a, uuid.New()))
}

func TestNewPrivateChat(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	chat := NewPrivateChat(b, a)

	low, high := OrderedPair(a, b)
	assert.Equal(t, low, chat.UserAId)
	assert.Equal(t, high, chat.UserBId)
	assert.Equal(t, PrivateChatID(a, b), chat.Id)

	assert.True(t, chat.HasParticipant(a))
	assert.True(t, chat.HasParticipant(b))
	assert.False(t, chat.HasParticipant(uuid.New()))
	assert.False(t, chat.HasParticipant(uuid.Nil))

	assert.Equal(t, b, chat.Counterpart(a))
	assert.Equal(t, a, chat.Counterpart(b))
}
