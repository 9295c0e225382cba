package service

import (
	"hash/fnv"
	"sync"
)

// stripedLock serializes append and mark-read per conversation key without
// growing a lock per key. Two keys may share a stripe; that only widens the
// critical section, never narrows it.
type stripedLock struct {
	stripes [64]sync.Mutex
}

func (l *stripedLock) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.stripes[h.Sum32()%uint32(len(l.stripes))]
}

func (l *stripedLock) Lock(key string) {
	l.stripe(key).Lock()
}

func (l *stripedLock) Unlock(key string) {
	l.stripe(key).Unlock()
}
