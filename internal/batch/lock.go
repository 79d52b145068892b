package batch

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// AcquireLock takes an advisory lock on the batch directory so two batch
// runs cannot interleave over the same files. The returned release
// function is safe to call once.
func AcquireLock(dir string) (func(), error) {
	lock := flock.New(filepath.Join(dir, ".subx-batch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another batch run is active in %q", dir)
	}
	return func() { _ = lock.Unlock() }, nil
}
