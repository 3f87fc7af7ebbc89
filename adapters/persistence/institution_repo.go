package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/domain/institution"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const institutionColumns = "id, name, image_url, linkedin_url, projects, created_at, updated_at"

type postgresInstitutionRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresInstitutionRepo(db *pgxpool.Pool, logger logger.Logger) institution.Repository {
	return &postgresInstitutionRepo{db: db, logger: logger}
}

func scanInstitution(row pgx.Row, l logger.Logger) (*institution.Institution, error) {
	i := &institution.Institution{}
	var projectsBytes []byte

	err := row.Scan(&i.ID, &i.Name, &i.ImageURL, &i.LinkedinURL, &projectsBytes, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperror.NewStoreUnavailable("failed to scan college row", err)
	}

	i.Projects = []institution.Project{}
	if len(projectsBytes) > 0 {
		if err := json.Unmarshal(projectsBytes, &i.Projects); err != nil {
			l.Warn("Failed to unmarshal college projects", zap.String("collegename", i.Name), zap.Error(err))
			i.Projects = []institution.Project{}
		}
	}
	return i, nil
}

// Upsert keeps the stored image and network URL when the new record leaves them
// unset.
func (r *postgresInstitutionRepo) Upsert(ctx context.Context, i *institution.Institution) (*institution.Institution, error) {
	projects := i.Projects
	if projects == nil {
		projects = []institution.Project{}
	}
	projectsBytes, err := json.Marshal(projects)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal college projects", err)
	}

	query := `
		INSERT INTO institutions (` + institutionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			image_url = COALESCE(EXCLUDED.image_url, institutions.image_url),
			linkedin_url = COALESCE(EXCLUDED.linkedin_url, institutions.linkedin_url),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + institutionColumns
	row := r.db.QueryRow(ctx, query,
		i.ID, i.Name, i.ImageURL, i.LinkedinURL, projectsBytes, i.CreatedAt, i.UpdatedAt,
	)
	saved, err := scanInstitution(row, r.logger)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewInternal("upsert returned no college", err)
		}
		return nil, err
	}
	return saved, nil
}

func (r *postgresInstitutionRepo) FindByName(ctx context.Context, name string) (*institution.Institution, error) {
	row := r.db.QueryRow(ctx, `SELECT `+institutionColumns+` FROM institutions WHERE name = $1`, name)
	i, err := scanInstitution(row, r.logger)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("college", name)
	}
	return i, err
}

func (r *postgresInstitutionRepo) List(ctx context.Context) ([]*institution.Institution, error) {
	sql, args, err := psql.Select(institutionColumns).From("institutions").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list colleges query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewStoreUnavailable("failed to query colleges", err)
	}
	defer rows.Close()

	items := make([]*institution.Institution, 0)
	for rows.Next() {
		i, err := scanInstitution(rows, r.logger)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStoreUnavailable("error iterating college rows", err)
	}
	return items, nil
}

func (r *postgresInstitutionRepo) AddProject(ctx context.Context, name string, p institution.Project) (*institution.Institution, error) {
	projectBytes, err := json.Marshal([]institution.Project{p})
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal project", err)
	}
	query := `
		UPDATE institutions SET projects = projects || $2::jsonb, updated_at = NOW()
		WHERE name = $1
		RETURNING ` + institutionColumns
	i, err := scanInstitution(r.db.QueryRow(ctx, query, name, projectBytes), r.logger)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("college", name)
	}
	return i, err
}
