package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalKeepsTypeAndTimestamp(t *testing.T) {
	original := New(PrivateMessageSent, map[string]interface{}{
		"chat_id": "c1",
		"count":   float64(2),
	})

	data, err := Marshal(original)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, PrivateMessageSent, decoded.EventType())
	assert.True(t, original.Timestamp().Equal(decoded.Timestamp()))
	assert.Equal(t, original.Payload(), decoded.Payload())
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.Error(t, err)
}
