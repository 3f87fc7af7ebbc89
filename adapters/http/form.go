package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	profileUC "github.com/khoahotran/member-directory/internal/application/usecase/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

// readSubmission converts a multipart request into the form the profile pipeline
// decodes. Every file part is read fully into memory.
func readSubmission(c *gin.Context) (profileUC.RawSubmission, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return profileUC.RawSubmission{}, apperror.NewMalformedSubmission("request is not a valid multipart form", err)
	}

	raw := profileUC.RawSubmission{
		Fields: map[string][]string{},
		Files:  map[string][]attachment.File{},
	}
	for key, values := range form.Value {
		raw.Fields[key] = values
	}
	for key, headers := range form.File {
		files, err := readFiles(headers)
		if err != nil {
			return profileUC.RawSubmission{}, err
		}
		raw.Files[key] = files
	}
	return raw, nil
}

// readJSONSubmission accepts a flat JSON object. Arrays and objects are re-encoded
// so they go through the same decoding as JSON-array form fields.
func readJSONSubmission(c *gin.Context) (profileUC.RawSubmission, error) {
	var body map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		return profileUC.RawSubmission{}, apperror.NewMalformedSubmission("request body is not a JSON object", err)
	}

	raw := profileUC.RawSubmission{Fields: map[string][]string{}}
	for key, value := range body {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			raw.Fields[key] = []string{v}
		case float64:
			raw.Fields[key] = []string{strconv.FormatFloat(v, 'f', -1, 64)}
		case bool:
			raw.Fields[key] = []string{strconv.FormatBool(v)}
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return profileUC.RawSubmission{}, apperror.NewMalformedSubmission(fmt.Sprintf("'%s' could not be re-encoded", key), err)
			}
			raw.Fields[key] = []string{string(encoded)}
		}
	}
	return raw, nil
}

func isJSONRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), gin.MIMEJSON)
}

func readFiles(headers []*multipart.FileHeader) ([]attachment.File, error) {
	files := make([]attachment.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) (attachment.File, error) {
	src, err := fh.Open()
	if err != nil {
		return attachment.File{}, apperror.NewMalformedSubmission(fmt.Sprintf("cannot open part '%s'", fh.Filename), err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return attachment.File{}, apperror.NewMalformedSubmission(fmt.Sprintf("cannot read part '%s'", fh.Filename), err)
	}
	return attachment.File{Data: data, Filename: fh.Filename}, nil
}

// optionalFile returns the single file sent under key, if any.
func optionalFile(form *multipart.Form, key string) (*attachment.File, error) {
	if form == nil || len(form.File[key]) == 0 {
		return nil, nil
	}
	if len(form.File[key]) > 1 {
		return nil, apperror.NewMalformedSubmission(fmt.Sprintf("expected one '%s' part, got %d", key, len(form.File[key])), nil)
	}
	f, err := readFile(form.File[key][0])
	if err != nil {
		return nil, err
	}
	if len(f.Data) == 0 {
		return nil, apperror.NewMalformedSubmission(fmt.Sprintf("attachment '%s' is empty", f.Filename), nil)
	}
	return &f, nil
}

func formValue(form *multipart.Form, key string) string {
	if form == nil || len(form.Value[key]) == 0 {
		return ""
	}
	return strings.TrimSpace(form.Value[key][0])
}

// formPointer distinguishes an absent field from an empty one.
func formPointer(form *multipart.Form, key string) *string {
	if form == nil {
		return nil
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}
