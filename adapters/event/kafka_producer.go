package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const (
	TopicProfileEvents    = "profile.events"
	TopicAttachmentEvents = "attachment.events"

	OrphanReaperGroup = "orphan-reaper-group"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	ProfileEventsWriter    messageWriter
	AttachmentEventsWriter messageWriter
	logger                 logger.Logger
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	profileWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicProfileEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	attachmentWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicAttachmentEvents,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Kafka producers initialized", zap.Strings("brokers", brokers))
	return &KafkaProducerClient{
		ProfileEventsWriter:    profileWriter,
		AttachmentEventsWriter: attachmentWriter,
		logger:                 log,
	}, nil
}

// PublishProfileEvent keys messages by profile id so events of one profile stay
// ordered within a partition.
func (c *KafkaProducerClient) PublishProfileEvent(ctx context.Context, payload service.ProfileEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal profile event: %w", err)
	}
	return c.ProfileEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.ProfileID.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) PublishOrphanedAttachments(ctx context.Context, payload service.OrphanedAttachmentsPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal orphaned attachments event: %w", err)
	}
	return c.AttachmentEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.Reason),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.ProfileEventsWriter != nil {
		if err := c.ProfileEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close profile events writer", zap.Error(err))
		}
	}
	if c.AttachmentEventsWriter != nil {
		if err := c.AttachmentEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close attachment events writer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka producers")
}
