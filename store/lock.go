package store

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFile is the name of the lock file created inside the record directory.
const LockFile = ".enrichr.lock"

// Lock takes an exclusive, non-blocking lock on the record directory.
// It returns ErrLocked if another process already holds it.
func (s *Store) Lock() (func() error, error) {
	path := filepath.Join(s.dir, LockFile)
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	s.logger.Debug().Str("lock", path).Msg("Acquired store lock")
	return lock.Unlock, nil
}
