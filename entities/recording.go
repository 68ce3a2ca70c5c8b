package entities

import (
	"time"

	"github.com/google/uuid"

	"voice-recorder/constant"
)

type Recording struct {
	ID          uuid.UUID                `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID                `json:"user_id" gorm:"type:uuid;not null;index:idx_recordings_user_id"`
	Name        *string                  `json:"name" gorm:"type:varchar(255)"`
	Format      string                   `json:"format" gorm:"type:varchar(20);not null;default:'webm'"`
	Status      constant.RecordingStatus `json:"status" gorm:"type:varchar(20);not null"`
	TotalSize   int64                    `json:"total_size" gorm:"type:bigint;not null;default:0"`
	Duration    int                      `json:"duration" gorm:"type:integer;not null;default:0"`
	CreatedAt   time.Time                `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time                `json:"updated_at" gorm:"not null"`
	CompletedAt *time.Time               `json:"completed_at"`
}

func (Recording) TableName() string {
	return "recordings"
}
