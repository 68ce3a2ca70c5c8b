package dto

import (
	"time"

	"github.com/google/uuid"

	"voice-recorder/constant"
	"voice-recorder/entities"
)

// Response is the envelope on every JSON body the API returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthUser struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type AuthResponse struct {
	User        AuthUser `json:"user"`
	AccessToken string   `json:"access_token"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

type CreateRecordingRequest struct {
	Name   *string `json:"name"`
	Format string  `json:"format"`
}

// UploadChunkForm rides alongside the multipart "audio" file field.
type UploadChunkForm struct {
	ChunkIndex  int  `form:"chunkIndex"`
	IsLastChunk bool `form:"isLastChunk"`
}

type ChunkUploadResponse struct {
	ID         uuid.UUID `json:"id"`
	ChunkIndex int       `json:"chunkIndex"`
	Size       int64     `json:"size"`
}

type ChunkMetadata struct {
	ID         uuid.UUID `json:"id"`
	ChunkIndex int       `json:"chunk_index"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type RecordingResponse struct {
	ID          uuid.UUID                `json:"id"`
	Name        *string                  `json:"name"`
	Format      string                   `json:"format"`
	Status      constant.RecordingStatus `json:"status"`
	TotalSize   int64                    `json:"total_size"`
	Duration    int                      `json:"duration"`
	ChunkCount  int64                    `json:"chunk_count"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
	Chunks      []ChunkMetadata          `json:"chunks,omitempty"`
}

func NewAuthUser(user *entities.User) AuthUser {
	return AuthUser{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func NewChunkMetadata(chunk *entities.AudioChunk) ChunkMetadata {
	return ChunkMetadata{
		ID:         chunk.ID,
		ChunkIndex: chunk.ChunkIndex,
		Size:       chunk.Size,
		MimeType:   chunk.MimeType,
		CreatedAt:  chunk.CreatedAt,
	}
}

func NewRecordingResponse(recording *entities.Recording, chunkCount int64, chunks []*entities.AudioChunk) RecordingResponse {
	resp := RecordingResponse{
		ID:          recording.ID,
		Name:        recording.Name,
		Format:      recording.Format,
		Status:      recording.Status,
		TotalSize:   recording.TotalSize,
		Duration:    recording.Duration,
		ChunkCount:  chunkCount,
		CreatedAt:   recording.CreatedAt,
		UpdatedAt:   recording.UpdatedAt,
		CompletedAt: recording.CompletedAt,
	}
	for _, chunk := range chunks {
		resp.Chunks = append(resp.Chunks, NewChunkMetadata(chunk))
	}
	return resp
}
