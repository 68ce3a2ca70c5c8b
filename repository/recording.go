package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voice-recorder/entities"
)

// chunkMetaColumns is everything on audio_chunks except the blob itself.
const chunkMetaColumns = "id, recording_id, chunk_index, size, mime_type, created_at"

type RecordingRepository interface {
	GetDB() *gorm.DB
	Transaction(ctx context.Context, callback func(ctx context.Context, tx *gorm.DB) error, opts ...*sql.TxOptions) error
	Create(ctx context.Context, recording *entities.Recording) error
	Save(ctx context.Context, recording *entities.Recording) error
	// FindByIDAndUser applies the ownership filter. Callers cannot tell a
	// foreign recording from a missing one, and must not be able to.
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*entities.Recording, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Recording, error)
	DeleteWithChunks(ctx context.Context, id uuid.UUID) error
	FindChunk(ctx context.Context, recordingID uuid.UUID, chunkIndex int) (*entities.AudioChunk, error)
	SaveChunk(ctx context.Context, chunk *entities.AudioChunk) error
	GetChunksMetadata(ctx context.Context, recordingID uuid.UUID) ([]*entities.AudioChunk, error)
	GetChunksWithData(ctx context.Context, recordingID uuid.UUID) ([]*entities.AudioChunk, error)
	CountChunks(ctx context.Context, recordingID uuid.UUID) (int64, error)
}

type recordingRepo struct {
	db *gorm.DB
}

func NewRecordingRepository(db *gorm.DB) RecordingRepository {
	return &recordingRepo{db: db}
}

func (r *recordingRepo) GetDB() *gorm.DB {
	return r.db
}

func (r *recordingRepo) Transaction(ctx context.Context, callback func(ctx context.Context, tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return callback(ctx, tx)
	}, opts...)
}

func (r *recordingRepo) Create(ctx context.Context, recording *entities.Recording) error {
	if recording.ID == uuid.Nil {
		recording.ID = uuid.New()
	}
	now := time.Now()
	recording.CreatedAt = now
	recording.UpdatedAt = now
	return r.db.WithContext(ctx).Create(recording).Error
}

func (r *recordingRepo) Save(ctx context.Context, recording *entities.Recording) error {
	recording.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(recording).Error
}

func (r *recordingRepo) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*entities.Recording, error) {
	recording := &entities.Recording{}
	err := r.db.WithContext(ctx).First(recording, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return recording, nil
}

func (r *recordingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Recording, error) {
	var recordings []*entities.Recording
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recordings).Error
	if err != nil {
		return nil, err
	}
	return recordings, nil
}

// DeleteWithChunks removes the recording and its chunks in one transaction
// so no orphan chunk rows survive, whatever the backing store's cascade
// behavior is.
func (r *recordingRepo) DeleteWithChunks(ctx context.Context, id uuid.UUID) error {
	return r.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", id).Delete(&entities.AudioChunk{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recording{}).Error
	})
}

func (r *recordingRepo) FindChunk(ctx context.Context, recordingID uuid.UUID, chunkIndex int) (*entities.AudioChunk, error) {
	chunk := &entities.AudioChunk{}
	err := r.db.WithContext(ctx).
		First(chunk, "recording_id = ? AND chunk_index = ?", recordingID, chunkIndex).Error
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

func (r *recordingRepo) SaveChunk(ctx context.Context, chunk *entities.AudioChunk) error {
	if chunk.ID == uuid.Nil {
		chunk.ID = uuid.New()
		chunk.CreatedAt = time.Now()
		return r.db.WithContext(ctx).Create(chunk).Error
	}
	return r.db.WithContext(ctx).Save(chunk).Error
}

func (r *recordingRepo) GetChunksMetadata(ctx context.Context, recordingID uuid.UUID) ([]*entities.AudioChunk, error) {
	var chunks []*entities.AudioChunk
	err := r.db.WithContext(ctx).
		Select(chunkMetaColumns).
		Where("recording_id = ?", recordingID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *recordingRepo) GetChunksWithData(ctx context.Context, recordingID uuid.UUID) ([]*entities.AudioChunk, error) {
	var chunks []*entities.AudioChunk
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *recordingRepo) CountChunks(ctx context.Context, recordingID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.AudioChunk{}).
		Where("recording_id = ?", recordingID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
