package store

import (
	"path/filepath"

	"github.com/pkg/errors"
	flock "github.com/theckman/go-flock"
)

// CacheLock file-locks a repo cache directory for the duration of a
// load: one lock per cache root so concurrent solvectl processes don't
// race on the same checkout.
type CacheLock struct {
	fl *flock.Flock
}

// LockCache acquires an exclusive, blocking lock on dir's lockfile.
func LockCache(dir string) (*CacheLock, error) {
	fl := flock.NewFlock(filepath.Join(dir, ".solvectl-lock"))
	if err := fl.Lock(); err != nil {
		return nil, errors.Wrapf(err, "store: locking cache dir %s", dir)
	}
	return &CacheLock{fl: fl}, nil
}

// TryLockCache acquires the lock only if it is immediately available,
// returning ok=false rather than blocking when another load is in
// progress.
func TryLockCache(dir string) (*CacheLock, bool, error) {
	fl := flock.NewFlock(filepath.Join(dir, ".solvectl-lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, false, errors.Wrapf(err, "store: try-locking cache dir %s", dir)
	}
	if !ok {
		return nil, false, nil
	}
	return &CacheLock{fl: fl}, true, nil
}

// Unlock releases the lock.
func (l *CacheLock) Unlock() error {
	return l.fl.Unlock()
}
