package dto

import (
	"time"

	"github.com/google/uuid"
)

// Inbound socket payloads

type FilePayload struct {
	Filename string `json:"filename" validate:"required,max=255"`
	URL      string `json:"url" validate:"required,url"`
	Size     int64  `json:"size" validate:"gt=0"`
	MimeType string `json:"mime_type" validate:"required,max=255"`
}

type SendPublicMessageRequest struct {
	Content string `json:"content"`
}

type SendPublicFileRequest struct {
	FilePayload
	Content string `json:"content"`
}

type SendPrivateMessageRequest struct {
	OtherUserId uuid.UUID `json:"other_user_id" validate:"required"`
	Content     string    `json:"content"`
}

type SendPrivateFileRequest struct {
	FilePayload
	OtherUserId uuid.UUID `json:"other_user_id" validate:"required"`
	Content     string    `json:"content"`
}

type PrivatePeerRequest struct {
	OtherUserId uuid.UUID `json:"other_user_id" validate:"required"`
}

type MarkChatReadRequest struct {
	ChatId uuid.UUID `json:"chat_id" validate:"required"`
}

// Outbound socket payloads

type UserSummary struct {
	Id        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

type FileResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	FileURL    string    `json:"file_url"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type MessageResponse struct {
	Id        uuid.UUID     `json:"id"`
	ChatId    *uuid.UUID    `json:"chat_id,omitempty"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	User      UserSummary   `json:"user"`
	Username  string        `json:"username"`
	File      *FileResponse `json:"file"`
}

type NoticePayload struct {
	Message string `json:"message"`
}

type PresencePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type PublicMessageNotification struct {
	SenderId   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Preview    string    `json:"preview"`
	Timestamp  time.Time `json:"timestamp"`
}

type UnreadCountUpdate struct {
	ChatId        uuid.UUID `json:"chat_id"`
	Count         int       `json:"count"`
	OtherUserId   uuid.UUID `json:"other_user_id"`
	OtherUsername string    `json:"other_username"`
}

type ReadReceipt struct {
	ChatId     uuid.UUID `json:"chat_id"`
	ReaderId   uuid.UUID `json:"reader_id"`
	ReaderName string    `json:"reader_name"`
}

type ChatMarkedRead struct {
	ChatId uuid.UUID `json:"chat_id"`
}

type OnlineUser struct {
	Id       *uuid.UUID `json:"id"`
	Username string     `json:"username"`
}

type OnlineUsersPayload struct {
	Users []OnlineUser `json:"users"`
}

type JoinedPrivatePayload struct {
	ChatId    uuid.UUID   `json:"chat_id"`
	OtherUser UserSummary `json:"other_user"`
}

// REST

type ChatSummaryResponse struct {
	ChatId       uuid.UUID   `json:"chat_id"`
	OtherUser    UserSummary `json:"other_user"`
	UnreadCount  int         `json:"unread_count"`
	LastMessage  string      `json:"last_message,omitempty"`
	LastActivity time.Time   `json:"last_activity"`
}
