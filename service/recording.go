package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"voice-recorder/constant"
	"voice-recorder/dto"
	"voice-recorder/entities"
	"voice-recorder/pkg/apperror"
	"voice-recorder/repository"
)

// Archiver copies a completed recording's audio to long-term storage.
// Archival is best effort: failures are logged, never surfaced.
type Archiver interface {
	ArchiveRecording(ctx context.Context, recording *entities.Recording, data []byte, mimeType string) error
}

// EventPublisher announces recording lifecycle changes to downstream
// consumers. Also best effort.
type EventPublisher interface {
	RecordingCompleted(ctx context.Context, recording *entities.Recording) error
	RecordingDeleted(ctx context.Context, recordingID, userID uuid.UUID) error
}

type RecordingService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateRecordingRequest) (*entities.Recording, error)
	UploadChunk(ctx context.Context, userID, recordingID uuid.UUID, chunkIndex int, isLastChunk bool, audioData []byte, mimeType string) (*entities.AudioChunk, error)
	Complete(ctx context.Context, recordingID, userID uuid.UUID) (*dto.RecordingResponse, error)
	Get(ctx context.Context, recordingID, userID uuid.UUID) (*dto.RecordingResponse, error)
	GetChunks(ctx context.Context, recordingID, userID uuid.UUID) ([]*entities.AudioChunk, error)
	Stream(ctx context.Context, recordingID, userID uuid.UUID) (*entities.AudioChunk, error)
	Delete(ctx context.Context, recordingID, userID uuid.UUID) error
	Cancel(ctx context.Context, recordingID, userID uuid.UUID) (*entities.Recording, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]dto.RecordingResponse, error)
}

type recordingService struct {
	repo      repository.RecordingRepository
	archiver  Archiver
	publisher EventPublisher
}

func NewRecordingService(repo repository.RecordingRepository, archiver Archiver, publisher EventPublisher) RecordingService {
	return &recordingService{
		repo:      repo,
		archiver:  archiver,
		publisher: publisher,
	}
}

func (s *recordingService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateRecordingRequest) (*entities.Recording, error) {
	format := req.Format
	if format == "" {
		format = constant.DefaultFormat
	}

	recording := &entities.Recording{
		UserID: userID,
		Name:   req.Name,
		Format: format,
		Status: constant.RecordingStatusActive,
	}
	if err := s.repo.Create(ctx, recording); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recording.ID.String()).
		Str("user_id", userID.String()).
		Msg("recording created")

	return recording, nil
}

func (s *recordingService) UploadChunk(ctx context.Context, userID, recordingID uuid.UUID, chunkIndex int, isLastChunk bool, audioData []byte, mimeType string) (*entities.AudioChunk, error) {
	recording, err := s.findOwned(ctx, recordingID, userID)
	if err != nil {
		return nil, err
	}

	if recording.Status != constant.RecordingStatusActive {
		return nil, apperror.BadRequest("recording is not active")
	}

	if mimeType == "" {
		mimeType = constant.DefaultMimeType
	}

	chunk, err := s.repo.FindChunk(ctx, recordingID, chunkIndex)
	switch {
	case err == nil:
		// Re-upload of an existing index overwrites in place, which makes
		// client retries safe.
		chunk.AudioData = audioData
		chunk.Size = int64(len(audioData))
		chunk.MimeType = mimeType
	case errors.Is(err, gorm.ErrRecordNotFound):
		chunk = &entities.AudioChunk{
			RecordingID: recordingID,
			ChunkIndex:  chunkIndex,
			AudioData:   audioData,
			Size:        int64(len(audioData)),
			MimeType:    mimeType,
		}
	default:
		return nil, err
	}

	if err := s.repo.SaveChunk(ctx, chunk); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recordingID.String()).
		Int("chunk_index", chunkIndex).
		Int64("size", chunk.Size).
		Bool("is_last_chunk", isLastChunk).
		Msg("chunk uploaded")

	if isLastChunk {
		if _, err := s.Complete(ctx, recordingID, userID); err != nil {
			return nil, err
		}
	}

	return chunk, nil
}

func (s *recordingService) Complete(ctx context.Context, recordingID, userID uuid.UUID) (*dto.RecordingResponse, error) {
	recording, err := s.findOwned(ctx, recordingID, userID)
	if err != nil {
		return nil, err
	}

	if recording.Status != constant.RecordingStatusActive {
		return nil, apperror.BadRequest("recording is not active")
	}

	chunks, err := s.repo.GetChunksMetadata(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	var totalSize int64
	for _, chunk := range chunks {
		totalSize += chunk.Size
	}

	now := time.Now()
	recording.Status = constant.RecordingStatusCompleted
	recording.TotalSize = totalSize
	// Rough estimate: one second per chunk. Real media-duration probing is
	// out of scope.
	recording.Duration = len(chunks)
	recording.CompletedAt = &now

	if err := s.repo.Save(ctx, recording); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recordingID.String()).
		Int64("total_size", totalSize).
		Int("chunk_count", len(chunks)).
		Msg("recording completed")

	s.archive(ctx, recording)
	if s.publisher != nil {
		if err := s.publisher.RecordingCompleted(ctx, recording); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("recording_id", recordingID.String()).
				Msg("failed to publish recording completed event")
		}
	}

	return s.Get(ctx, recordingID, userID)
}

// archive copies the audio payload to object storage, best effort.
func (s *recordingService) archive(ctx context.Context, recording *entities.Recording) {
	if s.archiver == nil {
		return
	}

	chunks, err := s.repo.GetChunksWithData(ctx, recording.ID)
	if err != nil || len(chunks) == 0 || len(chunks[0].AudioData) == 0 {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("recording_id", recording.ID.String()).
			Msg("skipping archive, no audio payload")
		return
	}

	if err := s.archiver.ArchiveRecording(ctx, recording, chunks[0].AudioData, chunks[0].MimeType); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("recording_id", recording.ID.String()).
			Msg("failed to archive recording")
	}
}

func (s *recordingService) Get(ctx context.Context, recordingID, userID uuid.UUID) (*dto.RecordingResponse, error) {
	recording, err := s.findOwned(ctx, recordingID, userID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.repo.GetChunksMetadata(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewRecordingResponse(recording, int64(len(chunks)), chunks)
	return &resp, nil
}

func (s *recordingService) GetChunks(ctx context.Context, recordingID, userID uuid.UUID) ([]*entities.AudioChunk, error) {
	if _, err := s.findOwned(ctx, recordingID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetChunksWithData(ctx, recordingID)
}

// Stream returns the playable payload. The client uploads one complete blob
// at index zero, so the first chunk is the whole recording.
func (s *recordingService) Stream(ctx context.Context, recordingID, userID uuid.UUID) (*entities.AudioChunk, error) {
	chunks, err := s.GetChunks(ctx, recordingID, userID)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return nil, apperror.BadRequest("no audio chunks found for this recording")
	}

	first := chunks[0]
	if len(first.AudioData) == 0 {
		return nil, apperror.BadRequest("audio data is corrupted or missing")
	}

	return first, nil
}

func (s *recordingService) Delete(ctx context.Context, recordingID, userID uuid.UUID) error {
	if _, err := s.findOwned(ctx, recordingID, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteWithChunks(ctx, recordingID); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recordingID.String()).
		Str("user_id", userID.String()).
		Msg("recording deleted")

	if s.publisher != nil {
		if err := s.publisher.RecordingDeleted(ctx, recordingID, userID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("recording_id", recordingID.String()).
				Msg("failed to publish recording deleted event")
		}
	}

	return nil
}

func (s *recordingService) Cancel(ctx context.Context, recordingID, userID uuid.UUID) (*entities.Recording, error) {
	recording, err := s.findOwned(ctx, recordingID, userID)
	if err != nil {
		return nil, err
	}

	if recording.Status != constant.RecordingStatusActive {
		return nil, apperror.BadRequest("recording is not active")
	}

	recording.Status = constant.RecordingStatusFailed
	if err := s.repo.Save(ctx, recording); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recordingID.String()).
		Msg("recording cancelled")

	return recording, nil
}

func (s *recordingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]dto.RecordingResponse, error) {
	recordings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RecordingResponse, 0, len(recordings))
	for _, recording := range recordings {
		count, err := s.repo.CountChunks(ctx, recording.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewRecordingResponse(recording, count, nil))
	}

	return responses, nil
}

// findOwned is the mandatory ownership filter. A recording that exists but
// belongs to someone else looks exactly like one that does not exist.
func (s *recordingService) findOwned(ctx context.Context, recordingID, userID uuid.UUID) (*entities.Recording, error) {
	recording, err := s.repo.FindByIDAndUser(ctx, recordingID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("recording not found")
		}
		return nil, err
	}
	return recording, nil
}
