package utils

import (
	"sync"
	"time"
)

var (
	targetLocks = make(map[string]time.Time)
	targetMutex = &sync.Mutex{}
)

// TargetLockKey identifies one moderation action kind against one member.
func TargetLockKey(action, guildID, userID string) string {
	return action + ":" + guildID + ":" + userID
}

// TryLockTarget takes the lock for key until ttl elapses or UnlockTarget is
// called. It returns false while another holder's lock is still live.
func TryLockTarget(key string, ttl time.Duration) bool {
	targetMutex.Lock()
	defer targetMutex.Unlock()

	if until, ok := targetLocks[key]; ok && time.Now().Before(until) {
		return false
	}
	targetLocks[key] = time.Now().Add(ttl)
	return true
}

// UnlockTarget releases key. Releasing an unheld key is a no-op.
func UnlockTarget(key string) {
	targetMutex.Lock()
	defer targetMutex.Unlock()
	delete(targetLocks, key)
}
