package profile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/logger"
)

// Notifier publishes profile lifecycle events and reports blobs left behind by
// failed submissions. Publishing happens in the background and never fails the
// request.
type Notifier struct {
	publisher      service.EventPublisher
	cleanupOrphans bool
	logger         logger.Logger
}

// NewNotifier accepts a nil publisher, in which case events are only logged.
func NewNotifier(publisher service.EventPublisher, cleanupOrphans bool, log logger.Logger) *Notifier {
	return &Notifier{publisher: publisher, cleanupOrphans: cleanupOrphans, logger: log}
}

func (n *Notifier) ProfileChanged(eventType service.ProfileEventType, p *profile.Profile) {
	if n.publisher == nil {
		return
	}
	payload := service.ProfileEventPayload{
		EventType:  eventType,
		ProfileID:  p.ID,
		Slug:       p.Slug,
		Category:   string(p.Category),
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		if err := n.publisher.PublishProfileEvent(context.Background(), payload); err != nil {
			n.logger.Error("Failed to publish profile event", err,
				zap.String("event_type", string(eventType)),
				zap.String("profile_id", payload.ProfileID.String()))
		}
	}()
}

// Orphaned is called with every blob a failed submission managed to store. The blobs
// stay in place unless orphan cleanup is enabled, in which case the worker is asked
// to delete them.
func (n *Notifier) Orphaned(reason string, stored []attachment.Stored) {
	if len(stored) == 0 {
		return
	}
	keys := attachment.Keys(stored)
	if !n.cleanupOrphans || n.publisher == nil {
		n.logger.Warn("Attachments left without a profile", zap.String("reason", reason), zap.Strings("keys", keys))
		return
	}
	payload := service.OrphanedAttachmentsPayload{
		Reason:     reason,
		Keys:       keys,
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		if err := n.publisher.PublishOrphanedAttachments(context.Background(), payload); err != nil {
			n.logger.Error("Failed to publish orphaned attachments", err, zap.Strings("keys", keys))
		}
	}()
}
