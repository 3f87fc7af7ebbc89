package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/adapters/event"
	"github.com/khoahotran/member-directory/adapters/media_storage"
	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting member-directory worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := media_storage.NewBlobStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize blob store", err)
	}

	reapUC := attachment.NewReapOrphansUseCase(store, appLogger)

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicAttachmentEvents,
		GroupID:  event.OrphanReaperGroup,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicAttachmentEvents))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		var payload service.OrphanedAttachmentsPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Warn("Skipping undecodable message", zap.Int64("offset", msg.Offset), zap.Error(err))
			commitMessage(consumer, msg, appLogger)
			continue
		}

		appLogger.Info("Reaping orphaned attachments",
			zap.String("reason", payload.Reason),
			zap.Int("keys", len(payload.Keys)))

		if err := reapUC.Execute(ctx, payload); err != nil {
			appLogger.Error("Some orphaned attachments were not deleted", err, zap.Int64("offset", msg.Offset))
		}
		commitMessage(consumer, msg, appLogger)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
