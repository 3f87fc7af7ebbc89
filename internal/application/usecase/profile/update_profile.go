package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type UpdateProfileUseCase struct {
	repo     profile.Repository
	uploader *attachment.Uploader
	slugs    *SlugAllocator
	notifier *Notifier
	limits   DecodeLimits
	logger   logger.Logger
}

func NewUpdateProfileUseCase(
	repo profile.Repository,
	uploader *attachment.Uploader,
	slugs *SlugAllocator,
	notifier *Notifier,
	limits DecodeLimits,
	log logger.Logger,
) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{
		repo:     repo,
		uploader: uploader,
		slugs:    slugs,
		notifier: notifier,
		limits:   limits,
		logger:   log,
	}
}

type UpdateProfileInput struct {
	// Key is a slug or a profile id.
	Key        string
	Submission RawSubmission
}

type UpdateProfileOutput struct {
	Profile *profile.Profile
}

// Execute applies only the fields present in the submission. New image or
// certificate data replaces the stored URLs; absent attachments keep them.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "profile.update")
	defer span.End()

	sub, err := DecodeSubmission(input.Submission, uc.limits)
	if err != nil {
		return nil, err
	}

	target, err := resolve(ctx, uc.repo, input.Key)
	if err != nil {
		return nil, err
	}

	release, err := uc.slugs.LockProfile(ctx, target)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := uc.repo.FindByID(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	category, err := ValidatePartial(sub, current.Category)
	if err != nil {
		return nil, err
	}
	grade, err := parseGrade(sub, category)
	if err != nil {
		return nil, err
	}

	var stored []attachment.Stored
	var image *attachment.Stored
	if len(sub.Image) > 0 {
		s, err := uc.uploader.Upload(ctx, sub.Image[0])
		if err != nil {
			return nil, err
		}
		image = &s
		stored = append(stored, s)
	}
	var certificates []attachment.Stored
	if len(sub.Certificates) > 0 {
		certificates, err = uc.uploader.UploadAll(ctx, sub.Certificates)
		if err != nil {
			uc.notifier.Orphaned("certificate upload failed", append(stored, certificates...))
			return nil, err
		}
		stored = append(stored, certificates...)
	}

	updated := merge(current, sub, category, grade)
	if image != nil {
		updated.ImageURL = image.URL
	}
	if certificates != nil {
		updated.CertificateURLs = attachment.URLs(certificates)
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		uc.notifier.Orphaned("profile record invalid", stored)
		return nil, apperror.NewInternal("updated profile failed validation", err)
	}

	if profile.Slugify(updated.FullName) != profile.Slugify(current.FullName) {
		err = uc.slugs.Assign(ctx, updated, uc.repo.Update)
	} else {
		err = uc.repo.Update(ctx, updated)
	}
	if err != nil {
		span.RecordError(err)
		uc.notifier.Orphaned("profile could not be updated", stored)
		return nil, err
	}

	uc.logger.Info("Profile updated",
		zap.String("profile_id", updated.ID.String()),
		zap.String("slug", updated.Slug),
		zap.Int("new_attachments", len(stored)))
	uc.notifier.ProfileChanged(service.ProfileEventUpdated, updated)

	return &UpdateProfileOutput{Profile: updated}, nil
}

// merge returns a copy of current with the submitted fields applied. A category
// change starts the payload of the new category from scratch.
func merge(current *profile.Profile, sub *Submission, category profile.Category, grade *float64) *profile.Profile {
	updated := *current
	updated.CertificateURLs = cloneList(current.CertificateURLs)
	if current.Quotes != nil {
		updated.Quotes = append([]profile.Quote{}, current.Quotes...)
	}
	if category != current.Category || current.Details == nil {
		updated.Category = category
		updated.Details = profile.NewDetails(category)
	} else {
		updated.Details = cloneDetails(current.Details)
	}

	applyCommon(&updated, sub)
	applyDetails(updated.Details, sub, grade)
	return &updated
}

// resolve finds a profile by id when key parses as one, by slug otherwise.
func resolve(ctx context.Context, repo profile.Repository, key string) (*profile.Profile, error) {
	if id, err := uuid.Parse(key); err == nil {
		return repo.FindByID(ctx, id)
	}
	return repo.FindBySlug(ctx, key)
}
