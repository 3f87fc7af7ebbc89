package attachment

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const (
	FallbackContentType = "application/octet-stream"
	defaultConcurrency  = 4
	maxFilenameLength   = 128
)

var tracer = otel.Tracer("github.com/khoahotran/member-directory/usecase/attachment")

// File is an in-memory attachment together with the name it was submitted under.
type File struct {
	Data     []byte
	Filename string
}

// Stored describes one successfully written blob.
type Stored struct {
	Key         string
	URL         string
	Filename    string
	ContentType string
}

type Uploader struct {
	store       service.BlobStore
	prefix      string
	concurrency int
	newToken    func() string
	logger      logger.Logger
}

func NewUploader(store service.BlobStore, prefix string, concurrency int, log logger.Logger) *Uploader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Uploader{
		store:       store,
		prefix:      strings.Trim(prefix, "/"),
		concurrency: concurrency,
		newToken:    func() string { return uuid.NewString() },
		logger:      log,
	}
}

// UploadAll stores files concurrently and returns them in input order. The first
// failure cancels the remaining uploads and is returned as UploadFailed together with
// whatever had already been stored; removing those blobs is the caller's decision.
func (u *Uploader) UploadAll(ctx context.Context, files []File) ([]Stored, error) {
	if len(files) == 0 {
		return []Stored{}, nil
	}

	ctx, span := tracer.Start(ctx, "attachment.upload_all")
	defer span.End()
	span.SetAttributes(attribute.Int("attachment.count", len(files)))

	results := make([]Stored, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key := u.StorageKey(f.Filename)
			contentType := ContentTypeFor(f.Filename)
			url, err := u.store.Put(gctx, f.Data, key, contentType)
			if err != nil {
				return apperror.NewUploadFailed(f.Filename, err)
			}
			results[i] = Stored{Key: key, URL: url, Filename: f.Filename, ContentType: contentType}
			done[i] = true
			u.logger.Debug("Attachment stored", zap.String("key", key), zap.String("content_type", contentType))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		completed := make([]Stored, 0, len(files))
		for i := range results {
			if done[i] {
				completed = append(completed, results[i])
			}
		}
		return completed, err
	}
	return results, nil
}

// Upload stores a single file.
func (u *Uploader) Upload(ctx context.Context, f File) (Stored, error) {
	stored, err := u.UploadAll(ctx, []File{f})
	if err != nil {
		return Stored{}, err
	}
	return stored[0], nil
}

// StorageKey returns a fresh key for filename. The random token keeps identical
// filenames from overwriting each other.
func (u *Uploader) StorageKey(filename string) string {
	name := fmt.Sprintf("%s-%s", u.newToken(), SanitizeFilename(filename))
	if u.prefix == "" {
		return name
	}
	return u.prefix + "/" + name
}

// SanitizeFilename keeps the base name of filename restricted to a URL and key safe
// alphabet.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune('-')
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	if len(out) > maxFilenameLength {
		out = out[len(out)-maxFilenameLength:]
	}
	return out
}

// ContentTypeFor classifies filename by its extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return FallbackContentType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return FallbackContentType
}

// Keys returns the storage keys of stored.
func Keys(stored []Stored) []string {
	keys := make([]string, len(stored))
	for i, s := range stored {
		keys[i] = s.Key
	}
	return keys
}

// URLs returns the retrieval URLs of stored, in order.
func URLs(stored []Stored) []string {
	urls := make([]string, len(stored))
	for i, s := range stored {
		urls[i] = s.URL
	}
	return urls
}
