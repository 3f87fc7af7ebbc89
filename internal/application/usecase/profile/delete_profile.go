package profile

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type DeleteProfileUseCase struct {
	repo     profile.Repository
	notifier *Notifier
	logger   logger.Logger
}

func NewDeleteProfileUseCase(repo profile.Repository, notifier *Notifier, log logger.Logger) *DeleteProfileUseCase {
	return &DeleteProfileUseCase{repo: repo, notifier: notifier, logger: log}
}

type DeleteProfileInput struct {
	ID string
}

// Execute removes the profile document. Its blobs are kept.
func (uc *DeleteProfileUseCase) Execute(ctx context.Context, input DeleteProfileInput) error {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return apperror.NewNotFound("profile", input.ID)
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("Profile deleted", zap.String("profile_id", id.String()), zap.String("slug", p.Slug))
	uc.notifier.ProfileChanged(service.ProfileEventDeleted, p)
	return nil
}
