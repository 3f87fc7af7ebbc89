package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryCollege     Category = "college"
	CategoryJob         Category = "job"
	CategoryMarketing   Category = "marketing"
	CategoryDevelopment Category = "development"
)

var Categories = []Category{CategoryCollege, CategoryJob, CategoryMarketing, CategoryDevelopment}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

const (
	MinGrade = 0.0
	MaxGrade = 10.0
)

var (
	ErrEmptyFullName    = errors.New("full name must not be empty")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrMissingImage     = errors.New("profile must have exactly one image url")
	ErrDetailsMismatch  = errors.New("details do not belong to the profile category")
	ErrGradeOutOfBounds = fmt.Errorf("grade must lie in [%v, %v]", MinGrade, MaxGrade)
)

type Quote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Details is the category-specific payload of a Profile. Exactly one variant exists
// per Category.
type Details interface {
	Category() Category
}

type CollegeDetails struct {
	CollegeName string   `json:"collegeName,omitempty"`
	Year        string   `json:"year,omitempty"`
	Grade       *float64 `json:"cgpa,omitempty"`
}

type JobDetails struct {
	Position         string   `json:"position,omitempty"`
	CurrentPositions []string `json:"currentPositions,omitempty"`
	CurrentRoles     []string `json:"currentRoles,omitempty"`
	Skills           []string `json:"skills,omitempty"`
}

type MarketingDetails struct {
	Testimonials []string `json:"testimonials,omitempty"`
	PortfolioURL string   `json:"portfolioUrl,omitempty"`
}

type DevelopmentDetails struct {
	Skills       []string `json:"skills,omitempty"`
	CurrentRoles []string `json:"currentRoles,omitempty"`
	PortfolioURL string   `json:"portfolioUrl,omitempty"`
}

func (*CollegeDetails) Category() Category     { return CategoryCollege }
func (*JobDetails) Category() Category         { return CategoryJob }
func (*MarketingDetails) Category() Category   { return CategoryMarketing }
func (*DevelopmentDetails) Category() Category { return CategoryDevelopment }

// NewDetails returns an empty payload for c, or nil when c is unknown.
func NewDetails(c Category) Details {
	switch c {
	case CategoryCollege:
		return &CollegeDetails{}
	case CategoryJob:
		return &JobDetails{}
	case CategoryMarketing:
		return &MarketingDetails{}
	case CategoryDevelopment:
		return &DevelopmentDetails{}
	}
	return nil
}

// DecodeDetails restores a stored payload for c.
func DecodeDetails(c Category, raw []byte) (Details, error) {
	d := NewDetails(c)
	if d == nil {
		return nil, ErrInvalidCategory
	}
	if len(raw) == 0 || string(raw) == "null" {
		return d, nil
	}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decode %s details: %w", c, err)
	}
	return d, nil
}

// Profile is a directory member. The header fields are shared by every category;
// Details carries the category variant.
type Profile struct {
	ID              uuid.UUID `json:"id"`
	Slug            string    `json:"slug"`
	FullName        string    `json:"fullname"`
	Category        Category  `json:"userType"`
	ImageURL        string    `json:"imageUrl"`
	CertificateURLs []string  `json:"certificateUrls"`
	LinkedinURL     string    `json:"linkedinUrl,omitempty"`
	Quotes          []Quote   `json:"quotes,omitempty"`
	Details         Details   `json:"details"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p *Profile) Validate() error {
	if p.FullName == "" {
		return ErrEmptyFullName
	}
	if _, ok := ParseCategory(string(p.Category)); !ok {
		return ErrInvalidCategory
	}
	if p.ImageURL == "" {
		return ErrMissingImage
	}
	if p.Details != nil && p.Details.Category() != p.Category {
		return ErrDetailsMismatch
	}
	if cd, ok := p.Details.(*CollegeDetails); ok && cd.Grade != nil {
		if !GradeInRange(*cd.Grade) {
			return ErrGradeOutOfBounds
		}
	}
	return nil
}

func GradeInRange(g float64) bool {
	return !math.IsNaN(g) && g >= MinGrade && g <= MaxGrade
}

// College returns the college payload when the profile is a college member.
func (p *Profile) College() (*CollegeDetails, bool) {
	cd, ok := p.Details.(*CollegeDetails)
	return cd, ok
}

type Filter struct {
	Categories  []Category
	CollegeName string
	Year        string
	Limit       int
	Offset      int
}

type Repository interface {
	Save(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindBySlug(ctx context.Context, slug string) (*Profile, error)
	List(ctx context.Context, filter Filter) ([]*Profile, error)
}
