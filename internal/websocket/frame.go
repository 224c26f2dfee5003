package websocket

import "encoding/json"

// Inbound events.
const (
	EventJoinPublic         = "join_public"
	EventLeavePublic        = "leave_public"
	EventSendPublicMessage  = "send_public_message"
	EventSendPublicFile     = "send_public_file"
	EventJoinPrivate        = "join_private"
	EventLeavePrivate       = "leave_private"
	EventSendPrivateMessage = "send_private_message"
	EventSendPrivateFile    = "send_private_file"
	EventGetOnlineUsers     = "get_online_users"
	EventMarkChatRead       = "mark_chat_read"
	EventMarkPublicRead     = "mark_public_read"
)

// Outbound events.
const (
	EventConnected                 = "connected"
	EventUserJoined                = "user_joined"
	EventUserLeft                  = "user_left"
	EventNewPublicMessage          = "new_public_message"
	EventNewPublicFileMessage      = "new_public_file_message"
	EventNewPrivateMessage         = "new_private_message"
	EventNewPrivateFileMessage     = "new_private_file_message"
	EventPublicMessageNotification = "public_message_notification"
	EventUnreadCountUpdate         = "unread_count_update"
	EventMessageReadReceipt        = "message_read_receipt"
	EventChatMarkedRead            = "chat_marked_read"
	EventPublicChatMarkedRead      = "public_chat_marked_read"
	EventOnlineUsers               = "online_users"
	EventJoinedPrivate             = "joined_private"
	EventError                     = "error"
)

// Frame is the JSON text frame exchanged in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode builds an outbound frame. A nil payload is sent as an empty object.
func Encode(event string, payload interface{}) ([]byte, error) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

func Decode(raw []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(raw, &f)
	return f, err
}
