package service

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyedLock serializes work per key within this process.
type keyedLock struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newKeyedLock() *keyedLock {
	return &keyedLock{sems: make(map[string]*semaphore.Weighted)}
}

func (k *keyedLock) get(key string) *semaphore.Weighted {
	k.mu.Lock()
	defer k.mu.Unlock()
	sem, ok := k.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		k.sems[key] = sem
	}
	return sem
}

// Acquire locks every key, in sorted order, and returns the release func.
// It gives up when ctx is done.
func (k *keyedLock) Acquire(ctx context.Context, keys ...string) (func(), error) {
	uniq := make(map[string]struct{}, len(keys))
	sorted := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := uniq[key]; ok {
			continue
		}
		uniq[key] = struct{}{}
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	held := make([]*semaphore.Weighted, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
	}
	for _, key := range sorted {
		sem := k.get(key)
		if err := sem.Acquire(ctx, 1); err != nil {
			release()
			return nil, err
		}
		held = append(held, sem)
	}
	return release, nil
}
