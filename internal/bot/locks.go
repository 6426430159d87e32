package bot

import (
	"sync"
	"time"
)

type lockKey struct {
	roomID string
	botID  string
}

// LockTable is the per-(room, bot) soft lock guarding bot routines: a
// concurrent map from key to acquisition time, checked and set atomically.
// A lock older than the timeout is treated as stale (its owning task
// presumably crashed) and is forcibly reacquired rather than honored
// indefinitely. That trades a small duplicate-action risk, when the owner
// is merely slow, against a crashed task wedging a bot forever.
//
// This is a process-local convenience guard, not a distributed lock: with
// multiple worker processes two of them could both believe they own a
// bot's turn.
type LockTable struct {
	mu      sync.Mutex
	timeout time.Duration
	clk     func() time.Time
	held    map[lockKey]time.Time
}

// NewLockTable creates a lock table with the given stale timeout.
func NewLockTable(timeout time.Duration) *LockTable {
	return &LockTable{
		timeout: timeout,
		clk:     time.Now,
		held:    make(map[lockKey]time.Time),
	}
}

// WithClock swaps the time source, for tests.
func (t *LockTable) WithClock(clock func() time.Time) *LockTable {
	if clock != nil {
		t.clk = clock
	}
	return t
}

// TryAcquire takes the lock for (roomID, botID) unless it is already held
// and fresh. Stale holds are overridden.
func (t *LockTable) TryAcquire(roomID, botID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := lockKey{roomID: roomID, botID: botID}
	now := t.clk()
	if acquired, ok := t.held[key]; ok && now.Sub(acquired) < t.timeout {
		return false
	}
	t.held[key] = now
	return true
}

// Release frees the lock for (roomID, botID).
func (t *LockTable) Release(roomID, botID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.held, lockKey{roomID: roomID, botID: botID})
}
