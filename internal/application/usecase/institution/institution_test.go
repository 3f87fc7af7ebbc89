package institution

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/domain/institution"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type memRepo struct {
	items map[string]*institution.Institution
}

func (r *memRepo) Upsert(_ context.Context, i *institution.Institution) (*institution.Institution, error) {
	if existing, ok := r.items[i.Name]; ok {
		if i.ImageURL != nil {
			existing.ImageURL = i.ImageURL
		}
		if i.LinkedinURL != nil {
			existing.LinkedinURL = i.LinkedinURL
		}
		existing.UpdatedAt = i.UpdatedAt
		return existing, nil
	}
	r.items[i.Name] = i
	return i, nil
}

func (r *memRepo) FindByName(_ context.Context, name string) (*institution.Institution, error) {
	i, ok := r.items[name]
	if !ok {
		return nil, apperror.NewNotFound("college", name)
	}
	return i, nil
}

func (r *memRepo) List(context.Context) ([]*institution.Institution, error) {
	var out []*institution.Institution
	for _, i := range r.items {
		out = append(out, i)
	}
	return out, nil
}

func (r *memRepo) AddProject(ctx context.Context, name string, p institution.Project) (*institution.Institution, error) {
	i, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	i.Projects = append(i.Projects, p)
	return i, nil
}

// memProfiles implements only List; the other methods are never reached here.
type memProfiles struct {
	profile.Repository
	members []*profile.Profile
	filter  profile.Filter
}

func (r *memProfiles) List(_ context.Context, f profile.Filter) ([]*profile.Profile, error) {
	r.filter = f
	return r.members, nil
}

type memStore struct{ puts int }

func (s *memStore) Put(_ context.Context, _ []byte, key, _ string) (string, error) {
	s.puts++
	return "https://cdn.test/" + key, nil
}

func (s *memStore) Delete(context.Context, string) error { return nil }

func setup() (*InstitutionUseCase, *memRepo, *memProfiles, *memStore) {
	repo := &memRepo{items: map[string]*institution.Institution{}}
	profiles := &memProfiles{}
	store := &memStore{}
	log := logger.NewNopLogger()
	uc := NewInstitutionUseCase(repo, profiles, attachment.NewUploader(store, "colleges", 1, log), log)
	return uc, repo, profiles, store
}

func TestUpsertInstitution(t *testing.T) {
	uc, repo, _, store := setup()
	linkedin := "https://linkedin.com/school/aeu"

	created, err := uc.UpsertInstitution(context.Background(), UpsertInstitutionInput{
		Name:        " Analytical Engine University ",
		LinkedinURL: &linkedin,
		Image:       &attachment.File{Data: []byte("logo"), Filename: "logo.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engine University", created.Name)
	require.NotNil(t, created.ImageURL)
	assert.Contains(t, *created.ImageURL, "colleges/")
	assert.Equal(t, 1, store.puts)

	again, err := uc.UpsertInstitution(context.Background(), UpsertInstitutionInput{Name: "Analytical Engine University"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, repo.items, 1)

	_, err = uc.UpsertInstitution(context.Background(), UpsertInstitutionInput{
		Name:  "  ",
		Image: &attachment.File{Data: []byte("logo"), Filename: "logo.png"},
	})
	assert.ErrorIs(t, err, apperror.ErrMissingField)
	assert.Equal(t, 1, store.puts)
}

func TestAddProject(t *testing.T) {
	uc, _, _, store := setup()

	_, err := uc.AddProject(context.Background(), AddProjectInput{
		CollegeName: "Nowhere",
		Title:       "Difference Engine",
		Image:       &attachment.File{Data: []byte("img"), Filename: "engine.png"},
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, store.puts)

	_, err = uc.UpsertInstitution(context.Background(), UpsertInstitutionInput{Name: "AEU"})
	require.NoError(t, err)

	_, err = uc.AddProject(context.Background(), AddProjectInput{CollegeName: "AEU"})
	assert.ErrorIs(t, err, apperror.ErrMissingField)

	updated, err := uc.AddProject(context.Background(), AddProjectInput{
		CollegeName: "AEU",
		Title:       "Difference Engine",
		Description: "Polynomial tables",
		Image:       &attachment.File{Data: []byte("img"), Filename: "engine.png"},
	})
	require.NoError(t, err)
	require.Len(t, updated.Projects, 1)
	assert.NotEqual(t, uuid.Nil, updated.Projects[0].ID)
	assert.Contains(t, updated.Projects[0].ImageURL, "-engine.png")

	projects, err := uc.ListProjects(context.Background(), "AEU")
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	_, err = uc.ListProjects(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrMissingField)
}

func TestGetInstitutionIncludesMembers(t *testing.T) {
	uc, _, profiles, _ := setup()
	_, err := uc.UpsertInstitution(context.Background(), UpsertInstitutionInput{Name: "AEU"})
	require.NoError(t, err)
	profiles.members = []*profile.Profile{{
		ID:        uuid.New(),
		Slug:      "ada-lovelace",
		FullName:  "Ada Lovelace",
		Category:  profile.CategoryCollege,
		Details:   &profile.CollegeDetails{CollegeName: "AEU"},
		CreatedAt: time.Now(),
	}}

	got, err := uc.GetInstitution(context.Background(), "AEU")
	require.NoError(t, err)
	assert.Equal(t, "AEU", got.Institution.Name)
	assert.Len(t, got.Members, 1)
	assert.Equal(t, "AEU", profiles.filter.CollegeName)

	_, err = uc.GetInstitution(context.Background(), "Unknown")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
