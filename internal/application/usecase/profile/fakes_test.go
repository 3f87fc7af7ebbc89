package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

type fakeRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*profile.Profile
	saveErr  error
	writes   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{profiles: map[uuid.UUID]*profile.Profile{}}
}

func (r *fakeRepo) slugOwner(slug string) (uuid.UUID, bool) {
	for id, p := range r.profiles {
		if p.Slug == slug {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (r *fakeRepo) Save(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, taken := r.slugOwner(p.Slug); taken {
		return apperror.NewConflict("profile", "slug", p.Slug)
	}
	cp := *p
	r.profiles[p.ID] = &cp
	r.writes++
	return nil
}

func (r *fakeRepo) Update(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return apperror.NewNotFound("profile", p.ID.String())
	}
	if owner, taken := r.slugOwner(p.Slug); taken && owner != p.ID {
		return apperror.NewConflict("profile", "slug", p.Slug)
	}
	cp := *p
	r.profiles[p.ID] = &cp
	r.writes++
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		return apperror.NewNotFound("profile", id.String())
	}
	delete(r.profiles, id)
	r.writes++
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, apperror.NewNotFound("profile", id.String())
	}
	return p, nil
}

func (r *fakeRepo) FindBySlug(_ context.Context, slug string) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.slugOwner(slug); ok {
		return r.profiles[id], nil
	}
	return nil, apperror.NewNotFound("profile", slug)
}

func (r *fakeRepo) List(_ context.Context, filter profile.Filter) ([]*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*profile.Profile
	for _, p := range r.profiles {
		if len(filter.Categories) > 0 && !containsCategory(filter.Categories, p.Category) {
			continue
		}
		cd, isCollege := p.College()
		if filter.CollegeName != "" && (!isCollege || cd.CollegeName != filter.CollegeName) {
			continue
		}
		if filter.Year != "" && (!isCollege || cd.Year != filter.Year) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

func containsCategory(cs []profile.Category, c profile.Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

// fakeStore fails every Put whose key ends with a name listed in failOn.
type fakeStore struct {
	mu     sync.Mutex
	puts   []string
	failOn map[string]bool
	delay  map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{failOn: map[string]bool{}, delay: map[string]time.Duration{}}
}

func (s *fakeStore) Put(ctx context.Context, _ []byte, key, _ string) (string, error) {
	for name, d := range s.delay {
		if strings.HasSuffix(key, "-"+name) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	for name := range s.failOn {
		if strings.HasSuffix(key, "-"+name) {
			return "", errors.New("bucket unreachable")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, key)
	return "https://blobs.test/" + key, nil
}

func (s *fakeStore) Delete(context.Context, string) error { return nil }

func (s *fakeStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (service.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, service.ErrLockNotAcquired
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	profiles []service.ProfileEventPayload
	orphans  []service.OrphanedAttachmentsPayload
}

func (p *fakePublisher) PublishProfileEvent(_ context.Context, payload service.ProfileEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles = append(p.profiles, payload)
	return nil
}

func (p *fakePublisher) PublishOrphanedAttachments(_ context.Context, payload service.OrphanedAttachmentsPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orphans = append(p.orphans, payload)
	return nil
}

func (p *fakePublisher) profileEvents() []service.ProfileEventPayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.ProfileEventPayload{}, p.profiles...)
}

func (p *fakePublisher) orphanEvents() []service.OrphanedAttachmentsPayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.OrphanedAttachmentsPayload{}, p.orphans...)
}
