package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

var tracer = otel.Tracer("github.com/khoahotran/member-directory/usecase/profile")

type SubmitProfileUseCase struct {
	repo     profile.Repository
	uploader *attachment.Uploader
	slugs    *SlugAllocator
	notifier *Notifier
	limits   DecodeLimits
	logger   logger.Logger
}

func NewSubmitProfileUseCase(
	repo profile.Repository,
	uploader *attachment.Uploader,
	slugs *SlugAllocator,
	notifier *Notifier,
	limits DecodeLimits,
	log logger.Logger,
) *SubmitProfileUseCase {
	return &SubmitProfileUseCase{
		repo:     repo,
		uploader: uploader,
		slugs:    slugs,
		notifier: notifier,
		limits:   limits,
		logger:   log,
	}
}

type SubmitProfileInput struct {
	Submission RawSubmission
}

type SubmitProfileOutput struct {
	Profile *profile.Profile
}

// Execute runs decode, validation, image upload, certificate upload, record
// construction and persistence in that order; each step only starts once the
// previous one succeeded. Blobs stored before a later failure are reported to the
// notifier and left in place.
func (uc *SubmitProfileUseCase) Execute(ctx context.Context, input SubmitProfileInput) (*SubmitProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "profile.submit")
	defer span.End()

	sub, err := DecodeSubmission(input.Submission, uc.limits)
	if err != nil {
		return nil, err
	}
	category, err := Validate(sub)
	if err != nil {
		return nil, err
	}
	grade, err := parseGrade(sub, category)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("profile.category", string(category)),
		attribute.Int("profile.certificates", len(sub.Certificates)),
	)

	image, err := uc.uploader.Upload(ctx, sub.Image[0])
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	certificates, err := uc.uploader.UploadAll(ctx, sub.Certificates)
	if err != nil {
		span.RecordError(err)
		uc.notifier.Orphaned("certificate upload failed", append([]attachment.Stored{image}, certificates...))
		return nil, err
	}
	stored := append([]attachment.Stored{image}, certificates...)

	now := time.Now().UTC()
	p := &profile.Profile{
		ID:              uuid.New(),
		Category:        category,
		ImageURL:        image.URL,
		CertificateURLs: attachment.URLs(certificates),
		Details:         profile.NewDetails(category),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyCommon(p, sub)
	applyDetails(p.Details, sub, grade)

	if err := p.Validate(); err != nil {
		uc.notifier.Orphaned("profile record invalid", stored)
		return nil, apperror.NewInternal("constructed profile failed validation", err)
	}

	if err := uc.slugs.Assign(ctx, p, uc.repo.Save); err != nil {
		span.RecordError(err)
		uc.notifier.Orphaned("profile could not be saved", stored)
		return nil, err
	}

	uc.logger.Info("Profile created",
		zap.String("profile_id", p.ID.String()),
		zap.String("slug", p.Slug),
		zap.String("category", string(p.Category)),
		zap.Int("certificates", len(p.CertificateURLs)))
	uc.notifier.ProfileChanged(service.ProfileEventCreated, p)

	return &SubmitProfileOutput{Profile: p}, nil
}
