// Package events publishes recording lifecycle messages to a RabbitMQ topic
// exchange so downstream consumers (transcription, analytics) can react
// without the upload path knowing about them.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"voice-recorder/config"
	"voice-recorder/entities"
)

const (
	routingKeyCompleted = "recording.completed"
	routingKeyDeleted   = "recording.deleted"
)

type RecordingCompletedMessage struct {
	RecordingID uuid.UUID `json:"recordingId"`
	UserID      uuid.UUID `json:"userId"`
	Format      string    `json:"format"`
	TotalSize   int64     `json:"totalSize"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completedAt"`
}

type RecordingDeletedMessage struct {
	RecordingID uuid.UUID `json:"recordingId"`
	UserID      uuid.UUID `json:"userId"`
	DeletedAt   time.Time `json:"deletedAt"`
}

type Publisher struct {
	conn     *amqp.Connection
	exchange string
	kind     string
}

func NewPublisher(ctx context.Context, conn *amqp.Connection, cfg *config.RabbitMQ) (*Publisher, error) {
	exchange := cfg.ExchangeName
	if exchange == "" {
		exchange = "recording_events"
	}
	kind := cfg.Kind
	if kind == "" {
		kind = "topic"
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, kind, true, false, false, false, nil); err != nil {
		zerolog.Ctx(ctx).Error().Str("exchange", exchange).Msg("failed to declare exchange")
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		kind:     kind,
	}, nil
}

func (p *Publisher) RecordingCompleted(ctx context.Context, recording *entities.Recording) error {
	completedAt := time.Now()
	if recording.CompletedAt != nil {
		completedAt = *recording.CompletedAt
	}
	return p.publish(ctx, routingKeyCompleted, RecordingCompletedMessage{
		RecordingID: recording.ID,
		UserID:      recording.UserID,
		Format:      recording.Format,
		TotalSize:   recording.TotalSize,
		Duration:    recording.Duration,
		CompletedAt: completedAt,
	})
}

func (p *Publisher) RecordingDeleted(ctx context.Context, recordingID, userID uuid.UUID) error {
	return p.publish(ctx, routingKeyDeleted, RecordingDeletedMessage{
		RecordingID: recordingID,
		UserID:      userID,
		DeletedAt:   time.Now(),
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("exchange", p.exchange).
		Str("routing_key", routingKey).
		Msg("event published")

	return nil
}
