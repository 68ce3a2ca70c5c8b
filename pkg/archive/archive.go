// Package archive copies completed recordings to object storage. The
// database stays the system of record; the archive copy exists for backup
// and for tooling that reads straight from the bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"voice-recorder/constant"
	"voice-recorder/entities"
)

type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

func NewMinIOArchiver(client *minio.Client, bucket string) *MinIOArchiver {
	return &MinIOArchiver{
		client: client,
		bucket: bucket,
	}
}

func (a *MinIOArchiver) ArchiveRecording(ctx context.Context, recording *entities.Recording, data []byte, mimeType string) error {
	if mimeType == "" {
		mimeType = constant.DefaultMimeType
	}
	objectName := fmt.Sprintf("recordings/%s/%s.%s", recording.UserID, recording.ID, recording.Format)

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recording.ID.String()).
		Str("object_name", objectName).
		Int("size", len(data)).
		Msg("recording archived")

	return nil
}
