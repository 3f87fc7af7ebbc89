package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/domain/achievement"
	"github.com/khoahotran/member-directory/internal/domain/institution"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type DirectoryIntegrationTestSuite struct {
	suite.Suite
	dbPool          *pgxpool.Pool
	pgContainer     *postgres.PostgresContainer
	redisContainer  testcontainers.Container
	rdb             *redis.Client
	profileRepo     profile.Repository
	institutionRepo institution.Repository
	achievementRepo achievement.Repository
}

func (s *DirectoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	log := logger.NewNopLogger()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("directory_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(1 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.redisContainer = redisContainer

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		s.T().Fatalf("Failed to get redis endpoint: %s", err)
	}
	s.rdb = redis.NewClient(&redis.Options{Addr: endpoint})

	s.profileRepo = NewPostgresProfileRepo(s.dbPool, log)
	s.institutionRepo = NewPostgresInstitutionRepo(s.dbPool, log)
	s.achievementRepo = NewPostgresAchievementRepo(s.dbPool, log)
}

func (s *DirectoryIntegrationTestSuite) TearDownSuite() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.redisContainer != nil {
		_ = s.redisContainer.Terminate(context.Background())
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *DirectoryIntegrationTestSuite) SetupTest() {
	_, err := s.dbPool.Exec(context.Background(), `TRUNCATE profiles, institutions, achievements`)
	s.Require().NoError(err)
}

func TestDirectoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(DirectoryIntegrationTestSuite))
}

func newCollegeProfile(name, slug, college, year string) *profile.Profile {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &profile.Profile{
		ID:              uuid.New(),
		Slug:            slug,
		FullName:        name,
		Category:        profile.CategoryCollege,
		ImageURL:        "https://bucket.s3.eu-west-1.amazonaws.com/uploads/" + slug + ".png",
		CertificateURLs: []string{},
		Details:         &profile.CollegeDetails{CollegeName: college, Year: year},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *DirectoryIntegrationTestSuite) Test_Profile_SaveFindUpdateDelete() {
	ctx := context.Background()
	grade := 8.75
	p := newCollegeProfile("Ada Lovelace", "ada-lovelace", "AEU", "2")
	p.Details.(*profile.CollegeDetails).Grade = &grade
	p.Quotes = []profile.Quote{{Quote: "That brain of mine is something more than merely mortal", Author: "Ada"}}

	s.Require().NoError(s.profileRepo.Save(ctx, p))

	found, err := s.profileRepo.FindBySlug(ctx, "ada-lovelace")
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)
	s.Equal(p.Quotes, found.Quotes)
	s.Equal(p.Details, found.Details)
	s.NotNil(found.CertificateURLs)
	s.Empty(found.CertificateURLs)

	found.FullName = "Augusta Ada King"
	found.Slug = "augusta-ada-king"
	found.CertificateURLs = []string{"https://cdn/a.pdf", "https://cdn/b.pdf"}
	s.Require().NoError(s.profileRepo.Update(ctx, found))

	byID, err := s.profileRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("augusta-ada-king", byID.Slug)
	s.Equal([]string{"https://cdn/a.pdf", "https://cdn/b.pdf"}, byID.CertificateURLs)

	s.Require().NoError(s.profileRepo.Delete(ctx, p.ID))
	_, err = s.profileRepo.FindByID(ctx, p.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
	s.ErrorIs(s.profileRepo.Delete(ctx, p.ID), apperror.ErrNotFound)
}

func (s *DirectoryIntegrationTestSuite) Test_Profile_UniqueSlug() {
	ctx := context.Background()
	s.Require().NoError(s.profileRepo.Save(ctx, newCollegeProfile("Ada Lovelace", "ada-lovelace", "AEU", "2")))

	err := s.profileRepo.Save(ctx, newCollegeProfile("Ada Lovelace", "ada-lovelace", "AEU", "3"))
	s.ErrorIs(err, apperror.ErrConflict)
}

func (s *DirectoryIntegrationTestSuite) Test_Profile_ListFilters() {
	ctx := context.Background()
	s.Require().NoError(s.profileRepo.Save(ctx, newCollegeProfile("Ada Lovelace", "ada-lovelace", "AEU", "2")))
	s.Require().NoError(s.profileRepo.Save(ctx, newCollegeProfile("Charles Babbage", "charles-babbage", "AEU", "4")))
	job := newCollegeProfile("Grace Hopper", "grace-hopper", "", "")
	job.Category = profile.CategoryJob
	job.Details = &profile.JobDetails{Position: "Rear Admiral", Skills: []string{"COBOL"}}
	s.Require().NoError(s.profileRepo.Save(ctx, job))

	all, err := s.profileRepo.List(ctx, profile.Filter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	jobs, err := s.profileRepo.List(ctx, profile.Filter{Categories: []profile.Category{profile.CategoryJob}})
	s.Require().NoError(err)
	s.Require().Len(jobs, 1)
	s.IsType(&profile.JobDetails{}, jobs[0].Details)

	mixed, err := s.profileRepo.List(ctx, profile.Filter{Categories: []profile.Category{profile.CategoryJob, profile.CategoryCollege}})
	s.Require().NoError(err)
	s.Len(mixed, 3)

	year2, err := s.profileRepo.List(ctx, profile.Filter{CollegeName: "AEU", Year: "2"})
	s.Require().NoError(err)
	s.Require().Len(year2, 1)
	s.Equal("ada-lovelace", year2[0].Slug)

	page, err := s.profileRepo.List(ctx, profile.Filter{Limit: 2})
	s.Require().NoError(err)
	s.Len(page, 2)
}

func (s *DirectoryIntegrationTestSuite) Test_Institution_UpsertAndProjects() {
	ctx := context.Background()
	image := "https://cdn/aeu.png"
	now := time.Now().UTC()

	created, err := s.institutionRepo.Upsert(ctx, &institution.Institution{
		ID: uuid.New(), Name: "AEU", ImageURL: &image, CreatedAt: now, UpdatedAt: now,
	})
	s.Require().NoError(err)
	s.Equal("AEU", created.Name)

	again, err := s.institutionRepo.Upsert(ctx, &institution.Institution{
		ID: uuid.New(), Name: "AEU", CreatedAt: now, UpdatedAt: now,
	})
	s.Require().NoError(err)
	s.Equal(created.ID, again.ID)
	s.Require().NotNil(again.ImageURL)
	s.Equal(image, *again.ImageURL)

	withProject, err := s.institutionRepo.AddProject(ctx, "AEU", institution.Project{ID: uuid.New(), Title: "Difference Engine"})
	s.Require().NoError(err)
	s.Len(withProject.Projects, 1)

	_, err = s.institutionRepo.AddProject(ctx, "Nowhere", institution.Project{ID: uuid.New(), Title: "x"})
	s.ErrorIs(err, apperror.ErrNotFound)

	list, err := s.institutionRepo.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *DirectoryIntegrationTestSuite) Test_Achievement_CRUD() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	date := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	a := &achievement.Achievement{
		ID: uuid.New(), Name: "Hackathon", Date: &date,
		ImageURLs: []string{"https://cdn/1.jpg"}, CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(s.achievementRepo.Save(ctx, a))

	found, err := s.achievementRepo.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.Date)
	s.True(date.Equal(*found.Date))

	found.Name = "Hackathon 2024"
	s.Require().NoError(s.achievementRepo.Update(ctx, found))

	list, err := s.achievementRepo.List(ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("Hackathon 2024", list[0].Name)

	s.Require().NoError(s.achievementRepo.Delete(ctx, a.ID))
	s.ErrorIs(s.achievementRepo.Delete(ctx, a.ID), apperror.ErrNotFound)
}

func (s *DirectoryIntegrationTestSuite) Test_RedisLocker() {
	ctx := context.Background()
	locker := NewRedisLocker(s.rdb)
	key := fmt.Sprintf("slug:%s", uuid.NewString())

	release, err := locker.Acquire(ctx, key, 5*time.Second)
	s.Require().NoError(err)

	_, err = locker.Acquire(ctx, key, 5*time.Second)
	s.ErrorIs(err, service.ErrLockNotAcquired)

	s.Require().NoError(release(ctx))
	release, err = locker.Acquire(ctx, key, 5*time.Second)
	s.Require().NoError(err)
	s.NoError(release(ctx))
}
