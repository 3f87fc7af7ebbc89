package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const profileColumns = "id, slug, full_name, category, image_url, certificate_urls, linkedin_url, quotes, details, created_at, updated_at"

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func scanProfile(row pgx.Row, l logger.Logger) (*profile.Profile, error) {
	p := &profile.Profile{}
	var category string
	var quotesBytes, detailsBytes []byte

	err := row.Scan(
		&p.ID, &p.Slug, &p.FullName, &category, &p.ImageURL, &p.CertificateURLs,
		&p.LinkedinURL, &quotesBytes, &detailsBytes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperror.NewStoreUnavailable("failed to scan profile row", err)
	}
	p.Category = profile.Category(category)
	if p.CertificateURLs == nil {
		p.CertificateURLs = []string{}
	}

	if len(quotesBytes) > 0 {
		if err := json.Unmarshal(quotesBytes, &p.Quotes); err != nil {
			l.Warn("Failed to unmarshal profile quotes", zap.String("profile_id", p.ID.String()), zap.Error(err))
			p.Quotes = nil
		}
	}
	details, err := profile.DecodeDetails(p.Category, detailsBytes)
	if err != nil {
		l.Warn("Failed to decode profile details", zap.String("profile_id", p.ID.String()), zap.Error(err))
		details = profile.NewDetails(p.Category)
	}
	p.Details = details
	return p, nil
}

func scanProfiles(rows pgx.Rows, l logger.Logger) ([]*profile.Profile, error) {
	defer rows.Close()
	items := make([]*profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows, l)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStoreUnavailable("error iterating profile rows", err)
	}
	return items, nil
}

func encodeProfile(p *profile.Profile) (quotes, details []byte, err error) {
	q := p.Quotes
	if q == nil {
		q = []profile.Quote{}
	}
	if quotes, err = json.Marshal(q); err != nil {
		return nil, nil, apperror.NewInternal("failed to marshal profile quotes", err)
	}
	var d any = p.Details
	if p.Details == nil {
		d = map[string]any{}
	}
	if details, err = json.Marshal(d); err != nil {
		return nil, nil, apperror.NewInternal("failed to marshal profile details", err)
	}
	return quotes, details, nil
}

func (r *postgresProfileRepo) Save(ctx context.Context, p *profile.Profile) error {
	quotes, details, err := encodeProfile(p)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.Slug, p.FullName, string(p.Category), p.ImageURL, nonNilStrings(p.CertificateURLs),
		p.LinkedinURL, quotes, details, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("profile", "slug", p.Slug)
		}
		return apperror.NewStoreUnavailable("failed to save profile", err)
	}
	return nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, p *profile.Profile) error {
	quotes, details, err := encodeProfile(p)
	if err != nil {
		return err
	}
	query := `
		UPDATE profiles SET
			slug = $2, full_name = $3, category = $4, image_url = $5, certificate_urls = $6,
			linkedin_url = $7, quotes = $8, details = $9, updated_at = $10
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.ID, p.Slug, p.FullName, string(p.Category), p.ImageURL, nonNilStrings(p.CertificateURLs),
		p.LinkedinURL, quotes, details, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("profile", "slug", p.Slug)
		}
		return apperror.NewStoreUnavailable("failed to update profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("profile", p.ID.String())
	}
	return nil
}

func (r *postgresProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return apperror.NewStoreUnavailable("failed to delete profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("profile", id.String())
	}
	return nil
}

func (r *postgresProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row, r.logger)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("profile", id.String())
	}
	return p, err
}

func (r *postgresProfileRepo) FindBySlug(ctx context.Context, slug string) (*profile.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE slug = $1`, slug)
	p, err := scanProfile(row, r.logger)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("profile", slug)
	}
	return p, err
}

func (r *postgresProfileRepo) List(ctx context.Context, filter profile.Filter) ([]*profile.Profile, error) {
	builder := psql.Select(profileColumns).
		From("profiles").
		OrderBy("created_at DESC", "slug ASC")

	if len(filter.Categories) > 0 {
		categories := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			categories[i] = string(c)
		}
		builder = builder.Where(sq.Eq{"category": categories})
	}
	if filter.CollegeName != "" {
		builder = builder.Where(sq.Expr("details->>'collegeName' = ?", filter.CollegeName))
	}
	if filter.Year != "" {
		builder = builder.Where(sq.Expr("details->>'year' = ?", filter.Year))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list profiles query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewStoreUnavailable("failed to query profiles", err)
	}
	return scanProfiles(rows, r.logger)
}
