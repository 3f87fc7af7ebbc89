package media_storage

import (
	"context"
	"fmt"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/logger"
)

// NewBlobStore returns the store selected by storage.provider.
func NewBlobStore(ctx context.Context, cfg config.Config, log logger.Logger) (service.BlobStore, error) {
	switch cfg.Storage.Provider {
	case config.StorageProviderS3, "":
		return NewS3Store(ctx, cfg, log)
	case config.StorageProviderCloudinary:
		return NewCloudinaryStore(cfg, log)
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
}
