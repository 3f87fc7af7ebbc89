package institution

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Institution is a college in the directory. Name is the natural key; members refer
// to it by value through their college name.
type Institution struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"collegename"`
	ImageURL    *string   `json:"imageUrl"`
	LinkedinURL *string   `json:"linkedinUrl"`
	Projects    []Project `json:"projects"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	ProjectURL  string    `json:"projectUrl,omitempty"`
}

var (
	ErrEmptyName         = errors.New("college name must not be empty")
	ErrEmptyProjectTitle = errors.New("project title must not be empty")
)

func (i *Institution) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	for _, p := range i.Projects {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyProjectTitle
	}
	return nil
}

type Repository interface {
	// Upsert creates the institution or refreshes the set scalar fields of the one
	// with the same name. Projects of an existing institution are preserved.
	Upsert(ctx context.Context, i *Institution) (*Institution, error)
	FindByName(ctx context.Context, name string) (*Institution, error)
	List(ctx context.Context) ([]*Institution, error)
	AddProject(ctx context.Context, name string, p Project) (*Institution, error)
}
