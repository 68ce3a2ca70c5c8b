package entities

import (
	"time"

	"github.com/google/uuid"
)

// AudioChunk holds the uploaded bytes inline. (recording_id, chunk_index)
// is unique: re-uploading an index overwrites, it never appends.
type AudioChunk struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	RecordingID uuid.UUID `json:"recording_id" gorm:"type:uuid;not null;uniqueIndex:uk_audio_chunks_recording_index"`
	ChunkIndex  int       `json:"chunk_index" gorm:"not null;uniqueIndex:uk_audio_chunks_recording_index"`
	AudioData   []byte    `json:"-" gorm:"type:bytea"`
	Size        int64     `json:"size" gorm:"type:bigint;not null"`
	MimeType    string    `json:"mime_type" gorm:"type:varchar(100);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}

func (AudioChunk) TableName() string {
	return "audio_chunks"
}
