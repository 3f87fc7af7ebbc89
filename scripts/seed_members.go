package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/khoahotran/member-directory/adapters/persistence"
	profileUC "github.com/khoahotran/member-directory/internal/application/usecase/profile"
	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/internal/domain/institution"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/logger"
)

// Seeds a local database with fake members spread over every category.
func main() {
	count := flag.Int("count", 20, "number of members to insert")
	college := flag.String("college", "Demo Institute of Technology", "college the college members attend")
	flag.Parse()

	fmt.Println("adding demo members into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)
	ctx := context.Background()

	pool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	profiles := persistence.NewPostgresProfileRepo(pool, appLogger)
	institutions := persistence.NewPostgresInstitutionRepo(pool, appLogger)
	slugs := profileUC.NewSlugAllocator(profiles, nil, profileUC.DefaultLockTTL, appLogger)

	now := time.Now().UTC()
	if _, err := institutions.Upsert(ctx, &institution.Institution{
		ID:        uuid.New(),
		Name:      *college,
		Projects:  []institution.Project{},
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		log.Fatalf("cannot add college: %v", err)
	}

	for i := 0; i < *count; i++ {
		p := fakeProfile(profile.Categories[i%len(profile.Categories)], *college)
		if err := slugs.Assign(ctx, p, profiles.Save); err != nil {
			log.Fatalf("cannot add member %q: %v", p.FullName, err)
		}
	}

	fmt.Printf("added %d members, college members attend '%s'\n", *count, *college)
}

func fakeProfile(category profile.Category, college string) *profile.Profile {
	now := time.Now().UTC()
	p := &profile.Profile{
		ID:              uuid.New(),
		FullName:        gofakeit.Name(),
		Category:        category,
		ImageURL:        gofakeit.URL(),
		CertificateURLs: []string{},
		LinkedinURL:     "https://www.linkedin.com/in/" + gofakeit.Username(),
		Quotes:          []profile.Quote{{Quote: gofakeit.Quote(), Author: gofakeit.Name()}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	switch category {
	case profile.CategoryCollege:
		grade := gofakeit.Float64Range(profile.MinGrade, profile.MaxGrade)
		p.Details = &profile.CollegeDetails{
			CollegeName: college,
			Year:        strconv.Itoa(gofakeit.IntRange(2020, 2028)),
			Grade:       &grade,
		}
	case profile.CategoryJob:
		p.Details = &profile.JobDetails{
			Position:     gofakeit.JobTitle(),
			CurrentRoles: []string{gofakeit.JobDescriptor()},
			Skills:       []string{gofakeit.ProgrammingLanguage(), gofakeit.HackerVerb()},
		}
	case profile.CategoryMarketing:
		p.Details = &profile.MarketingDetails{
			Testimonials: []string{gofakeit.Phrase()},
			PortfolioURL: gofakeit.URL(),
		}
	case profile.CategoryDevelopment:
		p.Details = &profile.DevelopmentDetails{
			Skills:       []string{gofakeit.ProgrammingLanguage(), gofakeit.ProgrammingLanguage()},
			PortfolioURL: gofakeit.URL(),
		}
	}
	return p
}
