package achievement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/domain/achievement"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const defaultPageSize = 50

type AchievementUseCase struct {
	repo      achievement.Repository
	uploader  *attachment.Uploader
	maxImages int
	logger    logger.Logger
}

func NewAchievementUseCase(r achievement.Repository, uploader *attachment.Uploader, maxImages int, log logger.Logger) *AchievementUseCase {
	return &AchievementUseCase{repo: r, uploader: uploader, maxImages: maxImages, logger: log}
}

type CreateAchievementInput struct {
	Name   string
	Date   string
	Images []attachment.File
}

func (uc *AchievementUseCase) CreateAchievement(ctx context.Context, in CreateAchievementInput) (*achievement.Achievement, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.NewMissingField("name")
	}
	if len(in.Images) == 0 {
		return nil, apperror.NewMissingField("images")
	}
	date, err := parseOptionalDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := uc.checkImages(in.Images); err != nil {
		return nil, err
	}

	stored, err := uc.uploader.UploadAll(ctx, in.Images)
	if err != nil {
		uc.logOrphans(stored)
		return nil, err
	}

	now := time.Now().UTC()
	item := &achievement.Achievement{
		ID:        uuid.New(),
		Name:      name,
		Date:      date,
		ImageURLs: attachment.URLs(stored),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		uc.logOrphans(stored)
		return nil, apperror.NewInternal("achievement validation failed", err)
	}
	if err := uc.repo.Save(ctx, item); err != nil {
		uc.logOrphans(stored)
		return nil, err
	}
	return item, nil
}

type UpdateAchievementInput struct {
	ID     string
	Name   *string
	Date   *string
	Images []attachment.File
}

// UpdateAchievement applies the provided fields; new images replace the list.
func (uc *AchievementUseCase) UpdateAchievement(ctx context.Context, in UpdateAchievementInput) (*achievement.Achievement, error) {
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, apperror.NewNotFound("achievement", in.ID)
	}
	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *item

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.NewMissingField("name")
		}
		updated.Name = name
	}
	if in.Date != nil {
		date, err := parseOptionalDate(*in.Date)
		if err != nil {
			return nil, err
		}
		updated.Date = date
	}

	var stored []attachment.Stored
	if len(in.Images) > 0 {
		if err := uc.checkImages(in.Images); err != nil {
			return nil, err
		}
		stored, err = uc.uploader.UploadAll(ctx, in.Images)
		if err != nil {
			uc.logOrphans(stored)
			return nil, err
		}
		updated.ImageURLs = attachment.URLs(stored)
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, &updated); err != nil {
		uc.logOrphans(stored)
		return nil, err
	}
	return &updated, nil
}

func (uc *AchievementUseCase) DeleteAchievement(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return apperror.NewNotFound("achievement", rawID)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *AchievementUseCase) GetAchievement(ctx context.Context, rawID string) (*achievement.Achievement, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperror.NewNotFound("achievement", rawID)
	}
	return uc.repo.FindByID(ctx, id)
}

func (uc *AchievementUseCase) ListAchievements(ctx context.Context, page, limit int) ([]*achievement.Achievement, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	return uc.repo.List(ctx, limit, offset)
}

func (uc *AchievementUseCase) checkImages(images []attachment.File) error {
	if uc.maxImages > 0 && len(images) > uc.maxImages {
		return apperror.NewMalformedSubmission(fmt.Sprintf("at most %d images are accepted, got %d", uc.maxImages, len(images)), nil)
	}
	for _, img := range images {
		if len(img.Data) == 0 {
			return apperror.NewMalformedSubmission(fmt.Sprintf("attachment '%s' is empty", img.Filename), nil)
		}
	}
	return nil
}

func (uc *AchievementUseCase) logOrphans(stored []attachment.Stored) {
	if len(stored) == 0 {
		return
	}
	uc.logger.Warn("Achievement images left without a record", zap.Strings("keys", attachment.Keys(stored)))
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := achievement.ParseDate(raw)
	if err != nil {
		return nil, apperror.NewInvalidRange("date", "date must be YYYY-MM-DD or RFC3339", err)
	}
	return &t, nil
}
