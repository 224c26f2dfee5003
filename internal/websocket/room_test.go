package websocket

import (
	"testing"

	"realtime-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrivateRoomNameIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, PrivateRoom(a, b), PrivateRoom(b, a))
	assert.Equal(t, PrivateRoomName(entity.PrivateChatID(a, b)), PrivateRoom(a, b).Name)
}

func TestEncodeNilPayloadIsEmptyObject(t *testing.T) {
	raw, err := Encode(EventPublicChatMarkedRead, nil)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"public_chat_marked_read","data":{}}`, string(raw))
}
