package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

// Multipart field names accepted by the profile endpoints.
const (
	FieldFullName         = "fullname"
	FieldCategory         = "userType"
	FieldCategoryAlias    = "category"
	FieldCollegeName      = "collegename"
	FieldYear             = "year"
	FieldGrade            = "cgpa"
	FieldPosition         = "position"
	FieldCurrentPositions = "currentPositions"
	FieldCurrentRoles     = "currentRoles"
	FieldTestimonials     = "testimonials"
	FieldSkills           = "skills"
	FieldPortfolioURL     = "portfolioUrl"
	FieldLinkedinURL      = "linkedinUrl"
	FieldQuotes           = "quotes"

	FileImage             = "image"
	FileCertificates      = "certificates"
	FileCertificatesAlias = "certificates[]"
)

// RawSubmission is a multipart form as received: repeated text values per key and
// file parts per key.
type RawSubmission struct {
	Fields map[string][]string
	Files  map[string][]attachment.File
}

// Submission is a decoded RawSubmission. A nil pointer means the field was not
// provided.
type Submission struct {
	FullName         *string
	Category         *string
	CollegeName      *string
	Year             *string
	Grade            *string
	Position         *string
	PortfolioURL     *string
	LinkedinURL      *string
	CurrentPositions *[]string
	CurrentRoles     *[]string
	Testimonials     *[]string
	Skills           *[]string
	Quotes           *[]profile.Quote

	Image        []attachment.File
	Certificates []attachment.File
}

type DecodeLimits struct {
	MaxCertificates int
}

var (
	stringArraySchema = jsonschema.MustCompileString("string-array.json", `{
		"type": "array",
		"items": {"type": "string"}
	}`)
	quotesSchema = jsonschema.MustCompileString("quotes.json", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["quote", "author"],
			"properties": {
				"quote": {"type": "string"},
				"author": {"type": "string"}
			}
		}
	}`)
)

// DecodeSubmission turns raw form data into a Submission. It fails with
// MalformedSubmission when an array field is not a JSON array of the expected shape
// or when attachment counts exceed the limits.
func DecodeSubmission(raw RawSubmission, limits DecodeLimits) (*Submission, error) {
	sub := &Submission{
		FullName:     rawText(raw.Fields, FieldFullName),
		Category:     rawText(raw.Fields, FieldCategory),
		CollegeName:  optionalText(raw.Fields, FieldCollegeName),
		Year:         optionalText(raw.Fields, FieldYear),
		Grade:        optionalText(raw.Fields, FieldGrade),
		Position:     optionalText(raw.Fields, FieldPosition),
		PortfolioURL: optionalText(raw.Fields, FieldPortfolioURL),
		LinkedinURL:  optionalText(raw.Fields, FieldLinkedinURL),
	}
	if sub.Category == nil {
		sub.Category = rawText(raw.Fields, FieldCategoryAlias)
	}

	var err error
	listFields := []struct {
		key string
		dst **[]string
	}{
		{FieldCurrentPositions, &sub.CurrentPositions},
		{FieldCurrentRoles, &sub.CurrentRoles},
		{FieldTestimonials, &sub.Testimonials},
		{FieldSkills, &sub.Skills},
	}
	for _, lf := range listFields {
		if *lf.dst, err = decodeStringList(raw.Fields, lf.key); err != nil {
			return nil, err
		}
	}
	if sub.Quotes, err = decodeQuotes(raw.Fields); err != nil {
		return nil, err
	}

	sub.Image = raw.Files[FileImage]
	if len(sub.Image) > 1 {
		return nil, apperror.NewMalformedSubmission(fmt.Sprintf("expected one '%s' part, got %d", FileImage, len(sub.Image)), nil)
	}
	sub.Certificates = append(append([]attachment.File{}, raw.Files[FileCertificates]...), raw.Files[FileCertificatesAlias]...)
	if limits.MaxCertificates > 0 && len(sub.Certificates) > limits.MaxCertificates {
		return nil, apperror.NewMalformedSubmission(fmt.Sprintf("at most %d certificates are accepted, got %d", limits.MaxCertificates, len(sub.Certificates)), nil)
	}
	for _, a := range append(append([]attachment.File{}, sub.Image...), sub.Certificates...) {
		if len(a.Data) == 0 {
			return nil, apperror.NewMalformedSubmission(fmt.Sprintf("attachment '%s' is empty", a.Filename), nil)
		}
	}
	return sub, nil
}

// HasAttachments reports whether the submission carries new attachment data.
func (s *Submission) HasAttachments() bool {
	return len(s.Image) > 0 || len(s.Certificates) > 0
}

// rawText returns the trimmed first value of key, keeping empty strings so that an
// explicitly blank field can be told apart from a missing one.
func rawText(fields map[string][]string, key string) *string {
	vals, ok := fields[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := strings.TrimSpace(vals[0])
	return &v
}

func optionalText(fields map[string][]string, key string) *string {
	v := rawText(fields, key)
	if v == nil || *v == "" {
		return nil
	}
	return v
}

// decodeStringList accepts either one JSON-encoded array or the key repeated once
// per element.
func decodeStringList(fields map[string][]string, key string) (*[]string, error) {
	vals := fields[key]
	switch len(vals) {
	case 0:
		return nil, nil
	case 1:
		text := strings.TrimSpace(vals[0])
		if text == "" {
			return nil, nil
		}
		var out []string
		if err := decodeJSONArray(key, text, stringArraySchema, &out); err != nil {
			return nil, err
		}
		return &out, nil
	default:
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return &out, nil
	}
}

func decodeQuotes(fields map[string][]string) (*[]profile.Quote, error) {
	text := ""
	if vals := fields[FieldQuotes]; len(vals) > 0 {
		text = strings.TrimSpace(vals[0])
	}
	if text == "" {
		return nil, nil
	}
	var out []profile.Quote
	if err := decodeJSONArray(FieldQuotes, text, quotesSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeJSONArray(key, text string, schema *jsonschema.Schema, dst any) error {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return apperror.NewMalformedSubmission(fmt.Sprintf("'%s' is not valid JSON", key), err)
	}
	if err := schema.Validate(doc); err != nil {
		return apperror.NewMalformedSubmission(fmt.Sprintf("'%s' does not have the expected shape", key), err)
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return apperror.NewMalformedSubmission(fmt.Sprintf("'%s' could not be decoded", key), err)
	}
	return nil
}
