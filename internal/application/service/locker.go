package service

import (
	"context"
	"errors"
	"time"
)

var ErrLockNotAcquired = errors.New("lock is held by another request")

type ReleaseFunc func(ctx context.Context) error

// Locker hands out short-lived exclusive leases on string keys.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}
