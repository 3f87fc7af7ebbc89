package profile

import (
	"github.com/khoahotran/member-directory/internal/domain/profile"
)

// applyDetails copies the present submission fields that belong to d's variant.
// Fields of other variants are ignored.
func applyDetails(d profile.Details, sub *Submission, grade *float64) {
	switch v := d.(type) {
	case *profile.CollegeDetails:
		setString(&v.CollegeName, sub.CollegeName)
		setString(&v.Year, sub.Year)
		if grade != nil {
			v.Grade = grade
		}
	case *profile.JobDetails:
		setString(&v.Position, sub.Position)
		setList(&v.CurrentPositions, sub.CurrentPositions)
		setList(&v.CurrentRoles, sub.CurrentRoles)
		setList(&v.Skills, sub.Skills)
	case *profile.MarketingDetails:
		setList(&v.Testimonials, sub.Testimonials)
		setString(&v.PortfolioURL, sub.PortfolioURL)
	case *profile.DevelopmentDetails:
		setList(&v.Skills, sub.Skills)
		setList(&v.CurrentRoles, sub.CurrentRoles)
		setString(&v.PortfolioURL, sub.PortfolioURL)
	}
}

// applyCommon copies the present category-independent fields.
func applyCommon(p *profile.Profile, sub *Submission) {
	if sub.FullName != nil {
		p.FullName = *sub.FullName
	}
	setString(&p.LinkedinURL, sub.LinkedinURL)
	if sub.Quotes != nil {
		p.Quotes = append([]profile.Quote{}, (*sub.Quotes)...)
	}
}

// cloneDetails returns a deep copy so that a failed update never leaks into the
// caller's copy of the profile.
func cloneDetails(d profile.Details) profile.Details {
	switch v := d.(type) {
	case *profile.CollegeDetails:
		c := *v
		if v.Grade != nil {
			g := *v.Grade
			c.Grade = &g
		}
		return &c
	case *profile.JobDetails:
		c := *v
		c.CurrentPositions = cloneList(v.CurrentPositions)
		c.CurrentRoles = cloneList(v.CurrentRoles)
		c.Skills = cloneList(v.Skills)
		return &c
	case *profile.MarketingDetails:
		c := *v
		c.Testimonials = cloneList(v.Testimonials)
		return &c
	case *profile.DevelopmentDetails:
		c := *v
		c.Skills = cloneList(v.Skills)
		c.CurrentRoles = cloneList(v.CurrentRoles)
		return &c
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setList(dst *[]string, src *[]string) {
	if src != nil {
		*dst = cloneList(*src)
	}
}

func cloneList(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
