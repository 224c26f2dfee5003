package service

import (
	"time"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"

	"github.com/google/uuid"
)

func newFile(p *dto.FilePayload, uploaderId uuid.UUID) *entity.File {
	return &entity.File{
		Filename:   p.Filename,
		FileURL:    p.URL,
		FileSize:   p.Size,
		MimeType:   p.MimeType,
		UploaderId: uploaderId,
	}
}

func toUserSummary(u *entity.User) dto.UserSummary {
	return dto.UserSummary{
		Id:        u.Id,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

func toMessageResponse(id uuid.UUID, chatId *uuid.UUID, content string, createdAt time.Time, author *entity.User, file *entity.File) *dto.MessageResponse {
	res := &dto.MessageResponse{
		Id:        id,
		ChatId:    chatId,
		Content:   content,
		Timestamp: createdAt,
		User:      toUserSummary(author),
		Username:  author.Username,
	}
	if file != nil {
		res.File = &dto.FileResponse{
			Id:         file.Id,
			Filename:   file.Filename,
			FileURL:    file.FileURL,
			FileSize:   file.FileSize,
			MimeType:   file.MimeType,
			UploadedAt: file.UploadedAt,
		}
	}
	return res
}
