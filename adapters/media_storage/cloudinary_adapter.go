package media_storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type cloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	logger logger.Logger
}

func NewCloudinaryStore(cfg config.Config, log logger.Logger) (service.BlobStore, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name is not configured")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Cloudinary blob store ready", zap.String("cloud_name", cfg.Cloudinary.CloudName))
	return &cloudinaryStore{cld: cld, logger: log}, nil
}

// Put uploads data under the key without its extension; Cloudinary derives the
// format itself and the content type is not needed.
func (a *cloudinaryStore) Put(ctx context.Context, data []byte, key string, _ string) (string, error) {
	result, err := a.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID(key),
		ResourceType: "auto",
	})
	if err != nil {
		return "", apperror.NewStoreUnavailable(fmt.Sprintf("upload %s to cloudinary", key), err)
	}
	if result.Error.Message != "" {
		return "", apperror.NewStoreUnavailable(fmt.Sprintf("upload %s to cloudinary", key), fmt.Errorf("%s", result.Error.Message))
	}
	return result.SecureURL, nil
}

func (a *cloudinaryStore) Delete(ctx context.Context, key string) error {
	_, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID(key),
	})
	if err != nil {
		return apperror.NewStoreUnavailable(fmt.Sprintf("delete %s from cloudinary", key), err)
	}
	return nil
}

func publicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}
