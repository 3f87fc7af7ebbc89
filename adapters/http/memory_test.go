package http

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/member-directory/internal/domain/achievement"
	"github.com/khoahotran/member-directory/internal/domain/institution"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

type memoryProfiles struct {
	mu    sync.Mutex
	items map[uuid.UUID]*profile.Profile
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{items: map[uuid.UUID]*profile.Profile{}}
}

func (m *memoryProfiles) Save(_ context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Slug == p.Slug {
			return apperror.NewConflict("profile", "slug", p.Slug)
		}
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memoryProfiles) Update(_ context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return apperror.NewNotFound("profile", p.ID.String())
	}
	for id, existing := range m.items {
		if id != p.ID && existing.Slug == p.Slug {
			return apperror.NewConflict("profile", "slug", p.Slug)
		}
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memoryProfiles) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperror.NewNotFound("profile", id.String())
	}
	delete(m.items, id)
	return nil
}

func (m *memoryProfiles) FindByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, apperror.NewNotFound("profile", id.String())
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProfiles) FindBySlug(_ context.Context, slug string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("profile", slug)
}

func (m *memoryProfiles) List(_ context.Context, f profile.Filter) ([]*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*profile.Profile{}
	for _, p := range m.items {
		if len(f.Categories) > 0 && !containsCategory(f.Categories, p.Category) {
			continue
		}
		if f.CollegeName != "" || f.Year != "" {
			cd, ok := p.College()
			if !ok {
				continue
			}
			if f.CollegeName != "" && cd.CollegeName != f.CollegeName {
				continue
			}
			if f.Year != "" && cd.Year != f.Year {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func containsCategory(set []profile.Category, c profile.Category) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

type memoryInstitutions struct {
	mu    sync.Mutex
	items map[string]*institution.Institution
}

func newMemoryInstitutions() *memoryInstitutions {
	return &memoryInstitutions{items: map[string]*institution.Institution{}}
}

func (m *memoryInstitutions) Upsert(_ context.Context, i *institution.Institution) (*institution.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[i.Name]; ok {
		if i.ImageURL != nil {
			existing.ImageURL = i.ImageURL
		}
		if i.LinkedinURL != nil {
			existing.LinkedinURL = i.LinkedinURL
		}
		cp := *existing
		return &cp, nil
	}
	cp := *i
	m.items[i.Name] = &cp
	return i, nil
}

func (m *memoryInstitutions) FindByName(_ context.Context, name string) (*institution.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.items[name]
	if !ok {
		return nil, apperror.NewNotFound("college", name)
	}
	cp := *i
	return &cp, nil
}

func (m *memoryInstitutions) List(_ context.Context) ([]*institution.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*institution.Institution{}
	for _, i := range m.items {
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memoryInstitutions) AddProject(_ context.Context, name string, p institution.Project) (*institution.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.items[name]
	if !ok {
		return nil, apperror.NewNotFound("college", name)
	}
	i.Projects = append(i.Projects, p)
	cp := *i
	return &cp, nil
}

type memoryAchievements struct {
	mu    sync.Mutex
	items map[uuid.UUID]*achievement.Achievement
}

func newMemoryAchievements() *memoryAchievements {
	return &memoryAchievements{items: map[uuid.UUID]*achievement.Achievement{}}
}

func (m *memoryAchievements) Save(_ context.Context, a *achievement.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memoryAchievements) Update(_ context.Context, a *achievement.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		return apperror.NewNotFound("achievement", a.ID.String())
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memoryAchievements) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperror.NewNotFound("achievement", id.String())
	}
	delete(m.items, id)
	return nil
}

func (m *memoryAchievements) FindByID(_ context.Context, id uuid.UUID) (*achievement.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, apperror.NewNotFound("achievement", id.String())
	}
	cp := *a
	return &cp, nil
}

func (m *memoryAchievements) List(_ context.Context, limit, offset int) ([]*achievement.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*achievement.Achievement{}
	for _, a := range m.items {
		cp := *a
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return []*achievement.Achievement{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memoryStore struct {
	mu   sync.Mutex
	keys []string
}

func (s *memoryStore) Put(_ context.Context, _ []byte, key, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "https://blobs.test/" + key, nil
}

func (s *memoryStore) Delete(_ context.Context, _ string) error { return nil }
