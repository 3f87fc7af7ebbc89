package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/member-directory/internal/domain/achievement"
	"github.com/khoahotran/member-directory/internal/domain/profile"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// MemberDTO is the flat wire shape of a profile; category fields are only present
// for the category they belong to.
type MemberDTO struct {
	ID               string          `json:"id"`
	Slug             string          `json:"slug"`
	FullName         string          `json:"fullname"`
	Category         string          `json:"userType"`
	ImageURL         string          `json:"imageUrl"`
	CertificateURLs  []string        `json:"certificateUrls"`
	LinkedinURL      string          `json:"linkedinUrl,omitempty"`
	Quotes           []profile.Quote `json:"quotes,omitempty"`
	CollegeName      string          `json:"collegename,omitempty"`
	Year             string          `json:"year,omitempty"`
	Grade            *float64        `json:"cgpa,omitempty"`
	Position         string          `json:"position,omitempty"`
	CurrentPositions []string        `json:"currentPositions,omitempty"`
	CurrentRoles     []string        `json:"currentRoles,omitempty"`
	Testimonials     []string        `json:"testimonials,omitempty"`
	Skills           []string        `json:"skills,omitempty"`
	PortfolioURL     string          `json:"portfolioUrl,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func ToMemberDTO(p *profile.Profile) MemberDTO {
	dto := MemberDTO{
		ID:              p.ID.String(),
		Slug:            p.Slug,
		FullName:        p.FullName,
		Category:        string(p.Category),
		ImageURL:        p.ImageURL,
		CertificateURLs: p.CertificateURLs,
		LinkedinURL:     p.LinkedinURL,
		Quotes:          p.Quotes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if dto.CertificateURLs == nil {
		dto.CertificateURLs = []string{}
	}

	switch d := p.Details.(type) {
	case *profile.CollegeDetails:
		dto.CollegeName = d.CollegeName
		dto.Year = d.Year
		dto.Grade = d.Grade
	case *profile.JobDetails:
		dto.Position = d.Position
		dto.CurrentPositions = d.CurrentPositions
		dto.CurrentRoles = d.CurrentRoles
		dto.Skills = d.Skills
	case *profile.MarketingDetails:
		dto.Testimonials = d.Testimonials
		dto.PortfolioURL = d.PortfolioURL
	case *profile.DevelopmentDetails:
		dto.Skills = d.Skills
		dto.CurrentRoles = d.CurrentRoles
		dto.PortfolioURL = d.PortfolioURL
	}
	return dto
}

func ToMemberDTOs(ps []*profile.Profile) []MemberDTO {
	out := make([]MemberDTO, len(ps))
	for i, p := range ps {
		out[i] = ToMemberDTO(p)
	}
	return out
}

type AchievementDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      *string   `json:"date"`
	ImageURLs []string  `json:"imageUrls"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToAchievementDTO(a *achievement.Achievement) AchievementDTO {
	dto := AchievementDTO{
		ID:        a.ID.String(),
		Name:      a.Name,
		ImageURLs: a.ImageURLs,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Date != nil {
		d := a.Date.Format("2006-01-02")
		dto.Date = &d
	}
	if dto.ImageURLs == nil {
		dto.ImageURLs = []string{}
	}
	return dto
}

func ToAchievementDTOs(as []*achievement.Achievement) []AchievementDTO {
	out := make([]AchievementDTO, len(as))
	for i, a := range as {
		out[i] = ToAchievementDTO(a)
	}
	return out
}
