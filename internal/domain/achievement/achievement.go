package achievement

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Achievement struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Date      *time.Time `json:"date"`
	ImageURLs []string   `json:"imageUrls"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

var (
	ErrEmptyName = errors.New("achievement name must not be empty")
	ErrNoImages  = errors.New("achievement requires at least one image")
)

func (a *Achievement) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.ImageURLs) == 0 {
		return ErrNoImages
	}
	return nil
}

// ParseDate accepts a calendar date or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

type Repository interface {
	Save(ctx context.Context, a *Achievement) error
	Update(ctx context.Context, a *Achievement) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Achievement, error)
	List(ctx context.Context, limit, offset int) ([]*Achievement, error)
}
