package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/member-directory/internal/domain/achievement"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const achievementColumns = "id, name, achieved_on, image_urls, created_at, updated_at"

type postgresAchievementRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresAchievementRepo(db *pgxpool.Pool, logger logger.Logger) achievement.Repository {
	return &postgresAchievementRepo{db: db, logger: logger}
}

func scanAchievement(row pgx.Row) (*achievement.Achievement, error) {
	a := &achievement.Achievement{}
	err := row.Scan(&a.ID, &a.Name, &a.Date, &a.ImageURLs, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperror.NewStoreUnavailable("failed to scan achievement row", err)
	}
	if a.ImageURLs == nil {
		a.ImageURLs = []string{}
	}
	return a, nil
}

func (r *postgresAchievementRepo) Save(ctx context.Context, a *achievement.Achievement) error {
	query := `
		INSERT INTO achievements (` + achievementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.Name, a.Date, nonNilStrings(a.ImageURLs), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return apperror.NewStoreUnavailable("failed to save achievement", err)
	}
	return nil
}

func (r *postgresAchievementRepo) Update(ctx context.Context, a *achievement.Achievement) error {
	query := `
		UPDATE achievements SET name = $2, achieved_on = $3, image_urls = $4, updated_at = $5
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, a.ID, a.Name, a.Date, nonNilStrings(a.ImageURLs), a.UpdatedAt)
	if err != nil {
		return apperror.NewStoreUnavailable("failed to update achievement", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("achievement", a.ID.String())
	}
	return nil
}

func (r *postgresAchievementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	if err != nil {
		return apperror.NewStoreUnavailable("failed to delete achievement", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("achievement", id.String())
	}
	return nil
}

func (r *postgresAchievementRepo) FindByID(ctx context.Context, id uuid.UUID) (*achievement.Achievement, error) {
	row := r.db.QueryRow(ctx, `SELECT `+achievementColumns+` FROM achievements WHERE id = $1`, id)
	a, err := scanAchievement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("achievement", id.String())
	}
	return a, err
}

func (r *postgresAchievementRepo) List(ctx context.Context, limit, offset int) ([]*achievement.Achievement, error) {
	builder := psql.Select(achievementColumns).
		From("achievements").
		OrderBy("achieved_on DESC NULLS LAST", "created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list achievements query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewStoreUnavailable("failed to query achievements", err)
	}
	defer rows.Close()

	items := make([]*achievement.Achievement, 0)
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStoreUnavailable("error iterating achievement rows", err)
	}
	return items, nil
}
