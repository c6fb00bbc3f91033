// Package lock serializes work per key, either inside one process or across
// processes through Redis.
package lock

import (
	"context"
	"errors"
)

// ErrTimeout is returned when a lock could not be acquired in time.
var ErrTimeout = errors.New("lock: acquire timed out")

// Locker hands out exclusive per-key locks. The returned func releases the lock
// and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
