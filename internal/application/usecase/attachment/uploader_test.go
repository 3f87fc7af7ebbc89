package attachment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type putCall struct {
	Key         string
	ContentType string
}

type fakeStore struct {
	mu     sync.Mutex
	calls  []putCall
	failOn map[string]error
	delay  map[string]time.Duration
}

func (s *fakeStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	for name, d := range s.delay {
		if strings.HasSuffix(key, name) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, putCall{Key: key, ContentType: contentType})
	for name, err := range s.failOn {
		if strings.HasSuffix(key, name) {
			return "", err
		}
	}
	return "https://blobs.test/" + key, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error { return nil }

func newTestUploader(store *fakeStore, concurrency int) *Uploader {
	u := NewUploader(store, "uploads", concurrency, logger.NewNopLogger())
	var mu sync.Mutex
	n := 0
	u.newToken = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("tok%03d", n)
	}
	return u
}

func TestUploadAll_PreservesOrderUnderConcurrency(t *testing.T) {
	store := &fakeStore{delay: map[string]time.Duration{
		"first.pdf":  30 * time.Millisecond,
		"second.pdf": 10 * time.Millisecond,
	}}
	u := newTestUploader(store, 3)

	files := []File{
		{Data: []byte("1"), Filename: "first.pdf"},
		{Data: []byte("2"), Filename: "second.pdf"},
		{Data: []byte("3"), Filename: "third.pdf"},
	}
	stored, err := u.UploadAll(context.Background(), files)

	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, f := range files {
		assert.True(t, strings.HasSuffix(stored[i].URL, f.Filename), "position %d", i)
		assert.Equal(t, "application/pdf", stored[i].ContentType)
	}
	assert.Len(t, store.calls, 3)
}

func TestUploadAll_FailFast(t *testing.T) {
	boom := errors.New("access denied")
	store := &fakeStore{
		failOn: map[string]error{"bad.png": boom},
		delay:  map[string]time.Duration{"slow.png": 200 * time.Millisecond},
	}
	u := newTestUploader(store, 1)

	stored, err := u.UploadAll(context.Background(), []File{
		{Data: []byte("a"), Filename: "good.png"},
		{Data: []byte("b"), Filename: "bad.png"},
		{Data: []byte("c"), Filename: "slow.png"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUploadFailed)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.Cause(), boom)

	require.Len(t, stored, 1)
	assert.True(t, strings.HasSuffix(stored[0].Key, "good.png"))
}

func TestUploadAll_Empty(t *testing.T) {
	store := &fakeStore{}
	stored, err := newTestUploader(store, 2).UploadAll(context.Background(), nil)

	require.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Empty(t, stored)
	assert.Empty(t, store.calls)
}

func TestStorageKey_NoCollisionOnDuplicateNames(t *testing.T) {
	u := NewUploader(&fakeStore{}, "/uploads/", 2, logger.NewNopLogger())
	name := gofakeit.Word() + ".jpg"

	a := u.StorageKey(name)
	b := u.StorageKey(name)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "uploads/"))
	assert.True(t, strings.HasSuffix(a, "-"+name))
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.png":              "photo.png",
		"my photo.png":           "my-photo.png",
		"../../etc/passwd":       "passwd",
		`C:\Users\ada\cert.pdf`:  "cert.pdf",
		"résumé.pdf":             "r_sum_.pdf",
		"":                       "file",
		"..":                     "file",
		"weird$name#(1).jpeg":    "weird_name__1_.jpeg",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", ContentTypeFor("a.PNG"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("a.jpg"))
	assert.Equal(t, "application/pdf", ContentTypeFor("cert.pdf"))
	assert.Equal(t, FallbackContentType, ContentTypeFor("blob.unknownext"))
	assert.Equal(t, FallbackContentType, ContentTypeFor("README"))
}
