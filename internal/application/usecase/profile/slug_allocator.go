package profile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const (
	DefaultLockTTL    = 10 * time.Second
	maxSlugCandidates = 100
	slugLockPrefix    = "slug:"
	profileLockPrefix = "profile:"

	lockRetryInitial = 10 * time.Millisecond
	lockRetryMax     = 200 * time.Millisecond
)

// SlugAllocator assigns unique slugs. Every candidate sharing a base is reserved
// under one lock, so two submissions for "Ada Lovelace" end up as ada-lovelace and
// ada-lovelace-2 instead of shadowing each other.
type SlugAllocator struct {
	repo   profile.Repository
	locker service.Locker
	ttl    time.Duration
	logger logger.Logger
}

// NewSlugAllocator accepts a nil locker; the unique slug column still rejects
// duplicates, but concurrent writers then race for the same candidate.
func NewSlugAllocator(repo profile.Repository, locker service.Locker, ttl time.Duration, log logger.Logger) *SlugAllocator {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &SlugAllocator{repo: repo, locker: locker, ttl: ttl, logger: log}
}

// Assign derives p's slug from its full name, picks the first free candidate and
// hands p to write while the reservation is held. A unique violation reported by
// write moves on to the next candidate.
func (a *SlugAllocator) Assign(ctx context.Context, p *profile.Profile, write func(context.Context, *profile.Profile) error) error {
	base := profile.Slugify(p.FullName)

	release, err := a.lock(ctx, slugLockPrefix+base)
	if err != nil {
		return err
	}
	defer release()

	for n := 1; n <= maxSlugCandidates; n++ {
		candidate := profile.SlugCandidate(base, n)
		free, err := a.available(ctx, candidate, p)
		if err != nil {
			return err
		}
		if !free {
			continue
		}

		p.Slug = candidate
		err = write(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return err
		}
		a.logger.Debug("Slug taken concurrently, trying next candidate", zap.String("slug", candidate))
	}
	return apperror.NewConflict("profile", "slug", base)
}

// LockProfile fences updates of one profile against each other.
func (a *SlugAllocator) LockProfile(ctx context.Context, p *profile.Profile) (func(), error) {
	return a.lock(ctx, profileLockPrefix+p.ID.String())
}

func (a *SlugAllocator) available(ctx context.Context, slug string, p *profile.Profile) (bool, error) {
	existing, err := a.repo.FindBySlug(ctx, slug)
	if errors.Is(err, apperror.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID == p.ID, nil
}

// lock waits for key with capped exponential backoff, for at most ttl.
func (a *SlugAllocator) lock(ctx context.Context, key string) (func(), error) {
	if a.locker == nil {
		return func() {}, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.ttl)
	defer cancel()

	delay := lockRetryInitial
	for {
		release, err := a.locker.Acquire(waitCtx, key, a.ttl)
		if err == nil {
			return func() {
				if err := release(context.Background()); err != nil {
					a.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		if !errors.Is(err, service.ErrLockNotAcquired) && waitCtx.Err() == nil {
			return nil, apperror.NewStoreUnavailable("lock service unavailable", err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			a.logger.Warn("Gave up waiting for lock", zap.String("key", key))
			return nil, apperror.NewBusy("profile", key)
		case <-timer.C:
		}
		if delay *= 2; delay > lockRetryMax {
			delay = lockRetryMax
		}
	}
}
