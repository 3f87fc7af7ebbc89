package profile

import (
	"context"
	"strings"

	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

type GetProfileUseCase struct {
	repo profile.Repository
}

func NewGetProfileUseCase(repo profile.Repository) *GetProfileUseCase {
	return &GetProfileUseCase{repo: repo}
}

// Execute looks a profile up by slug, or by id when key is one.
func (uc *GetProfileUseCase) Execute(ctx context.Context, key string) (*profile.Profile, error) {
	return resolve(ctx, uc.repo, strings.TrimSpace(key))
}

type ListProfilesUseCase struct {
	repo profile.Repository
}

func NewListProfilesUseCase(repo profile.Repository) *ListProfilesUseCase {
	return &ListProfilesUseCase{repo: repo}
}

type ListProfilesInput struct {
	Categories  []string
	CollegeName string
	Year        string
	Limit       int
	Offset      int
}

func (uc *ListProfilesUseCase) Execute(ctx context.Context, input ListProfilesInput) ([]*profile.Profile, error) {
	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}
	return uc.repo.List(ctx, filter)
}

func buildFilter(input ListProfilesInput) (profile.Filter, error) {
	filter := profile.Filter{
		CollegeName: strings.TrimSpace(input.CollegeName),
		Year:        strings.TrimSpace(input.Year),
		Limit:       input.Limit,
		Offset:      input.Offset,
	}
	for _, raw := range input.Categories {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			c, ok := profile.ParseCategory(part)
			if !ok {
				return profile.Filter{}, apperror.NewInvalidCategory(part)
			}
			filter.Categories = append(filter.Categories, c)
		}
	}
	if filter.Limit < 0 {
		return profile.Filter{}, apperror.NewInvalidRange("limit", "limit must not be negative", nil)
	}
	if filter.Offset < 0 {
		return profile.Filter{}, apperror.NewInvalidRange("offset", "offset must not be negative", nil)
	}
	return filter, nil
}
