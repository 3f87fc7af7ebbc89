package attachment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type deletingStore struct {
	deleted []string
	failOn  string
}

func (s *deletingStore) Put(context.Context, []byte, string, string) (string, error) {
	return "", errors.New("not used")
}

func (s *deletingStore) Delete(_ context.Context, key string) error {
	if key == s.failOn {
		return errors.New("access denied")
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func TestReapOrphans(t *testing.T) {
	store := &deletingStore{failOn: "uploads/b.pdf"}
	uc := NewReapOrphansUseCase(store, logger.NewNopLogger())

	err := uc.Execute(context.Background(), service.OrphanedAttachmentsPayload{
		Reason: "profile could not be saved",
		Keys:   []string{"uploads/a.png", "uploads/b.pdf", "uploads/c.pdf"},
	})

	assert.Error(t, err)
	assert.Equal(t, []string{"uploads/a.png", "uploads/c.pdf"}, store.deleted)
}

func TestReapOrphans_Empty(t *testing.T) {
	uc := NewReapOrphansUseCase(&deletingStore{}, logger.NewNopLogger())
	assert.NoError(t, uc.Execute(context.Background(), service.OrphanedAttachmentsPayload{}))
}
