package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"voice-recorder/constant"
	"voice-recorder/dto"
	"voice-recorder/entities"
	"voice-recorder/pkg/apperror"
	"voice-recorder/repository"
	"voice-recorder/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

func newRecordingService(t *testing.T) (service.RecordingService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return service.NewRecordingService(repository.NewRecordingRepository(db), nil, nil), db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func strPtr(s string) *string {
	return &s
}

func TestCreateRecordingDefaults(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")

	recording, err := svc.Create(context.Background(), user.ID, dto.CreateRecordingRequest{Name: strPtr("take one")})
	require.NoError(t, err)

	assert.Equal(t, constant.RecordingStatusActive, recording.Status)
	assert.Equal(t, "webm", recording.Format)
	assert.Equal(t, user.ID, recording.UserID)
	assert.NotEqual(t, uuid.Nil, recording.ID)
}

func TestUploadChunkUpsertsByIndex(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)

	first, err := svc.UploadChunk(ctx, user.ID, recording.ID, 0, false, []byte("first payload"), "audio/webm")
	require.NoError(t, err)

	second, err := svc.UploadChunk(ctx, user.ID, recording.ID, 0, false, []byte("second"), "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&entities.AudioChunk{}).Where("recording_id = ?", recording.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	chunks, err := svc.GetChunks(ctx, recording.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []byte("second"), chunks[0].AudioData)
	assert.Equal(t, int64(len("second")), chunks[0].Size)
}

func TestLastChunkCompletesRecording(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)

	payload := make([]byte, 1000)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 0, true, payload, "audio/webm")
	require.NoError(t, err)

	got, err := svc.Get(ctx, recording.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, constant.RecordingStatusCompleted, got.Status)
	assert.Equal(t, int64(1000), got.TotalSize)
	assert.Equal(t, 1, got.Duration)
	require.NotNil(t, got.CompletedAt)
}

func TestCompleteAggregatesAllChunks(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)

	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 0, false, make([]byte, 300), "audio/webm")
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 1, false, make([]byte, 700), "audio/webm")
	require.NoError(t, err)

	got, err := svc.Complete(ctx, recording.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.TotalSize)
	assert.Equal(t, 2, got.Duration)
	assert.Equal(t, int64(2), got.ChunkCount)
}

func TestUploadToCompletedRecordingFails(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 0, true, []byte("audio"), "audio/webm")
	require.NoError(t, err)

	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 1, false, []byte("more"), "audio/webm")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	var count int64
	require.NoError(t, db.Model(&entities.AudioChunk{}).Where("recording_id = ?", recording.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCompleteOnNonActiveRecordingFails(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, recording.ID, user.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, recording.ID, user.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestCancelSetsFailedWithoutDeleting(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, recording.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, constant.RecordingStatusFailed, cancelled.Status)

	var count int64
	require.NoError(t, db.Model(&entities.Recording{}).Where("id = ?", recording.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOwnershipIsIndistinguishableFromAbsence(t *testing.T) {
	svc, db := newRecordingService(t)
	owner := createTestUser(t, db, "a@x.com")
	intruder := createTestUser(t, db, "b@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, owner.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, owner.ID, recording.ID, 0, true, []byte("audio"), "audio/webm")
	require.NoError(t, err)

	_, err = svc.Get(ctx, recording.ID, intruder.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.Stream(ctx, recording.ID, intruder.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = svc.Delete(ctx, recording.ID, intruder.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// Same result as a recording that never existed.
	_, err = svc.Get(ctx, uuid.New(), intruder.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// The owner still sees it.
	_, err = svc.Get(ctx, recording.ID, owner.ID)
	assert.NoError(t, err)
}

func TestDeleteRemovesChunks(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 0, false, []byte("one"), "audio/webm")
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 1, false, []byte("two"), "audio/webm")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, recording.ID, user.ID))

	var chunkCount int64
	require.NoError(t, db.Model(&entities.AudioChunk{}).Where("recording_id = ?", recording.ID).Count(&chunkCount).Error)
	assert.Equal(t, int64(0), chunkCount)

	_, err = svc.Get(ctx, recording.ID, user.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestStreamServesFirstChunk(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 0, false, []byte("the whole blob"), "audio/webm;codecs=opus")
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 1, false, []byte("ignored"), "audio/webm")
	require.NoError(t, err)

	chunk, err := svc.Stream(ctx, recording.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("the whole blob"), chunk.AudioData)
	assert.Equal(t, "audio/webm;codecs=opus", chunk.MimeType)
	assert.Equal(t, 0, chunk.ChunkIndex)
}

func TestStreamWithoutChunksFails(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)

	_, err = svc.Stream(ctx, recording.ID, user.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestStreamWithEmptyFirstChunkFails(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 0, false, []byte{}, "audio/webm")
	require.NoError(t, err)

	_, err = svc.Stream(ctx, recording.ID, user.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestListByUserNewestFirstWithChunkCounts(t *testing.T) {
	svc, db := newRecordingService(t)
	user := createTestUser(t, db, "a@x.com")
	other := createTestUser(t, db, "b@x.com")
	ctx := context.Background()

	older, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{Name: strPtr("older")})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	newer, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{Name: strPtr("newer")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other.ID, dto.CreateRecordingRequest{Name: strPtr("not mine")})
	require.NoError(t, err)

	_, err = svc.UploadChunk(ctx, user.ID, older.ID, 0, false, []byte("one"), "audio/webm")
	require.NoError(t, err)

	list, err := svc.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, int64(0), list[0].ChunkCount)
	assert.Equal(t, int64(1), list[1].ChunkCount)
	// Listing never carries blob bytes.
	assert.Nil(t, list[0].Chunks)
}

type fakeArchiver struct {
	calls    int
	lastData []byte
	lastMime string
}

func (f *fakeArchiver) ArchiveRecording(_ context.Context, _ *entities.Recording, data []byte, mimeType string) error {
	f.calls++
	f.lastData = data
	f.lastMime = mimeType
	return nil
}

type fakePublisher struct {
	completed []uuid.UUID
	deleted   []uuid.UUID
}

func (f *fakePublisher) RecordingCompleted(_ context.Context, recording *entities.Recording) error {
	f.completed = append(f.completed, recording.ID)
	return nil
}

func (f *fakePublisher) RecordingDeleted(_ context.Context, recordingID, _ uuid.UUID) error {
	f.deleted = append(f.deleted, recordingID)
	return nil
}

func TestCompletionArchivesAndPublishes(t *testing.T) {
	db := newTestDB(t)
	archiver := &fakeArchiver{}
	publisher := &fakePublisher{}
	svc := service.NewRecordingService(repository.NewRecordingRepository(db), archiver, publisher)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	recording, err := svc.Create(ctx, user.ID, dto.CreateRecordingRequest{})
	require.NoError(t, err)
	_, err = svc.UploadChunk(ctx, user.ID, recording.ID, 0, true, []byte("blob"), "audio/webm")
	require.NoError(t, err)

	assert.Equal(t, 1, archiver.calls)
	assert.Equal(t, []byte("blob"), archiver.lastData)
	assert.Equal(t, "audio/webm", archiver.lastMime)
	require.Len(t, publisher.completed, 1)
	assert.Equal(t, recording.ID, publisher.completed[0])

	require.NoError(t, svc.Delete(ctx, recording.ID, user.ID))
	require.Len(t, publisher.deleted, 1)
	assert.Equal(t, recording.ID, publisher.deleted[0])
}
