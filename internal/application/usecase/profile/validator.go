package profile

import (
	"strconv"

	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

// Validate checks a complete submission and returns its category. It never touches
// the network.
func Validate(sub *Submission) (profile.Category, error) {
	if sub.FullName == nil || *sub.FullName == "" {
		return "", apperror.NewMissingField(FieldFullName)
	}
	if sub.Category == nil || *sub.Category == "" {
		return "", apperror.NewMissingField(FieldCategory)
	}
	if len(sub.Image) == 0 {
		return "", apperror.NewMissingField(FileImage)
	}

	category, ok := profile.ParseCategory(*sub.Category)
	if !ok {
		return "", apperror.NewInvalidCategory(*sub.Category)
	}
	if _, err := parseGrade(sub, category); err != nil {
		return "", err
	}
	return category, nil
}

// ValidatePartial checks the fields present in an update against the category the
// profile will have once the update is applied.
func ValidatePartial(sub *Submission, current profile.Category) (profile.Category, error) {
	if sub.FullName != nil && *sub.FullName == "" {
		return "", apperror.NewMissingField(FieldFullName)
	}

	category := current
	if sub.Category != nil {
		if *sub.Category == "" {
			return "", apperror.NewMissingField(FieldCategory)
		}
		c, ok := profile.ParseCategory(*sub.Category)
		if !ok {
			return "", apperror.NewInvalidCategory(*sub.Category)
		}
		category = c
	}
	if _, err := parseGrade(sub, category); err != nil {
		return "", err
	}
	return category, nil
}

// parseGrade returns the submitted grade for college members. Grades sent for other
// categories are ignored.
func parseGrade(sub *Submission, category profile.Category) (*float64, error) {
	if category != profile.CategoryCollege || sub.Grade == nil {
		return nil, nil
	}
	g, err := strconv.ParseFloat(*sub.Grade, 64)
	if err != nil {
		return nil, apperror.NewInvalidRange(FieldGrade, "grade must be a number", err)
	}
	if !profile.GradeInRange(g) {
		return nil, apperror.NewInvalidRange(FieldGrade, "grade must lie in [0, 10]", nil)
	}
	return &g, nil
}
