package institution

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/domain/institution"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type InstitutionUseCase struct {
	repo     institution.Repository
	profiles profile.Repository
	uploader *attachment.Uploader
	logger   logger.Logger
}

func NewInstitutionUseCase(r institution.Repository, profiles profile.Repository, uploader *attachment.Uploader, log logger.Logger) *InstitutionUseCase {
	return &InstitutionUseCase{repo: r, profiles: profiles, uploader: uploader, logger: log}
}

type UpsertInstitutionInput struct {
	Name        string
	LinkedinURL *string
	Image       *attachment.File
}

// UpsertInstitution creates the college or refreshes the one with the same name.
// The image is uploaded only after the input is known to be valid.
func (uc *InstitutionUseCase) UpsertInstitution(ctx context.Context, in UpsertInstitutionInput) (*institution.Institution, error) {
	now := time.Now().UTC()
	item := &institution.Institution{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		LinkedinURL: nonEmpty(in.LinkedinURL),
		Projects:    []institution.Project{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return nil, apperror.NewMissingField("collegename")
	}

	if in.Image != nil {
		stored, err := uc.uploader.Upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		item.ImageURL = &stored.URL
	}

	saved, err := uc.repo.Upsert(ctx, item)
	if err != nil {
		if item.ImageURL != nil {
			uc.logger.Warn("College image left without a record", zap.String("url", *item.ImageURL))
		}
		return nil, err
	}
	uc.logger.Info("College saved", zap.String("collegename", saved.Name))
	return saved, nil
}

func (uc *InstitutionUseCase) ListInstitutions(ctx context.Context) ([]*institution.Institution, error) {
	return uc.repo.List(ctx)
}

type InstitutionWithMembers struct {
	Institution *institution.Institution `json:"college"`
	Members     []*profile.Profile       `json:"members"`
}

// GetInstitution returns the college together with the members whose college name
// equals its name.
func (uc *InstitutionUseCase) GetInstitution(ctx context.Context, name string) (*InstitutionWithMembers, error) {
	item, err := uc.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	members, err := uc.profiles.List(ctx, profile.Filter{
		Categories:  []profile.Category{profile.CategoryCollege},
		CollegeName: item.Name,
	})
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*profile.Profile{}
	}
	return &InstitutionWithMembers{Institution: item, Members: members}, nil
}

type AddProjectInput struct {
	CollegeName string
	Title       string
	Description string
	ProjectURL  string
	Image       *attachment.File
}

func (uc *InstitutionUseCase) AddProject(ctx context.Context, in AddProjectInput) (*institution.Institution, error) {
	name := strings.TrimSpace(in.CollegeName)
	if name == "" {
		return nil, apperror.NewMissingField("collegename")
	}
	project := institution.Project{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ProjectURL:  strings.TrimSpace(in.ProjectURL),
	}
	if err := project.Validate(); err != nil {
		return nil, apperror.NewMissingField("title")
	}

	if _, err := uc.repo.FindByName(ctx, name); err != nil {
		return nil, err
	}

	if in.Image != nil {
		stored, err := uc.uploader.Upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		project.ImageURL = stored.URL
	}

	updated, err := uc.repo.AddProject(ctx, name, project)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Project added", zap.String("collegename", name), zap.String("project_id", project.ID.String()))
	return updated, nil
}

func (uc *InstitutionUseCase) ListProjects(ctx context.Context, collegeName string) ([]institution.Project, error) {
	name := strings.TrimSpace(collegeName)
	if name == "" {
		return nil, apperror.NewMissingField("collegename")
	}
	item, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if item.Projects == nil {
		return []institution.Project{}, nil
	}
	return item.Projects, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
