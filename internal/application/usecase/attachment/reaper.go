package attachment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/pkg/logger"
)

// ReapOrphansUseCase deletes blobs that a failed submission stored but never
// referenced.
type ReapOrphansUseCase struct {
	store  service.BlobStore
	logger logger.Logger
}

func NewReapOrphansUseCase(store service.BlobStore, log logger.Logger) *ReapOrphansUseCase {
	return &ReapOrphansUseCase{store: store, logger: log}
}

// Execute attempts every key and reports all failures together, so one bad key
// does not keep the rest alive.
func (uc *ReapOrphansUseCase) Execute(ctx context.Context, payload service.OrphanedAttachmentsPayload) error {
	var errs []error
	for _, key := range payload.Keys {
		if err := uc.store.Delete(ctx, key); err != nil {
			uc.logger.Error("Failed to delete orphaned attachment", err, zap.String("key", key))
			errs = append(errs, err)
			continue
		}
		uc.logger.Info("Deleted orphaned attachment", zap.String("key", key), zap.String("reason", payload.Reason))
	}
	return errors.Join(errs...)
}
