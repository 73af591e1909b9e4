package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
)

// KeepSessions is how many autosaved sessions survive an eviction pass.
const KeepSessions = 3

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// NoticeFunc surfaces a user-visible, non-technical message.
type NoticeFunc func(level NoticeLevel, message string)

// SafeStore wraps a Store so that callers never see storage errors: reads
// fall back to a default and writes report success as a boolean.
type SafeStore struct {
	store  Store
	notify NoticeFunc
}

func NewSafeStore(store Store, notify NoticeFunc) *SafeStore {
	if notify == nil {
		notify = func(NoticeLevel, string) {}
	}
	return &SafeStore{store: store, notify: notify}
}

// Store exposes the wrapped store.
func (s *SafeStore) Store() Store { return s.store }

// Load decodes key into dst. It reports false, leaving dst untouched, when
// the key is missing or holds corrupt JSON.
func (s *SafeStore) Load(ctx context.Context, key string, dst any) bool {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("storage: failed to read %s: %v", key, err)
		}
		return false
	}
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("storage: failed to decode %s: %v", key, err)
		return false
	}
	return true
}

// GetItem returns the decoded value under key, or def.
func GetItem[T any](ctx context.Context, s *SafeStore, key string, def T) T {
	var v T
	if !s.Load(ctx, key, &v) {
		return def
	}
	return v
}

// SetItem encodes and writes value. On quota exhaustion it evicts old
// sessions and retries once.
func (s *SafeStore) SetItem(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("storage: failed to encode %s: %v", key, err)
		s.notify(NoticeError, "Failed to save progress")
		return false
	}

	err = s.store.Set(ctx, key, raw)
	if err == nil {
		return true
	}
	log.Printf("storage: failed to write %s: %v", key, err)

	if !errors.Is(err, ErrQuotaExceeded) {
		s.notify(NoticeError, "Failed to save progress")
		return false
	}

	s.notify(NoticeError, "Storage full. Clearing old data...")
	s.ClearOldSessions(ctx)

	if err := s.store.Set(ctx, key, raw); err != nil {
		log.Printf("storage: retry write %s failed: %v", key, err)
		s.notify(NoticeError, "Failed to save. Please free up storage space.")
		return false
	}
	s.notify(NoticeSuccess, "Storage cleared, data saved successfully")
	return true
}

func (s *SafeStore) RemoveItem(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		log.Printf("storage: failed to delete %s: %v", key, err)
	}
}

type sessionStamp struct {
	Timestamp int64 `json:"timestamp"`
}

// ClearOldSessions removes autosaved sessions beyond the KeepSessions most
// recently written and returns how many were removed.
func (s *SafeStore) ClearOldSessions(ctx context.Context) int {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		log.Printf("storage: failed to clear old sessions: %v", err)
		return 0
	}

	type entry struct {
		key       string
		timestamp int64
	}
	var sessions []entry
	for _, k := range keys {
		if !IsSessionKey(k) {
			continue
		}
		stamp := GetItem(ctx, s, k, sessionStamp{})
		sessions = append(sessions, entry{key: k, timestamp: stamp.Timestamp})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].timestamp > sessions[j].timestamp
	})

	removed := 0
	for i := KeepSessions; i < len(sessions); i++ {
		if err := s.store.Remove(ctx, sessions[i].key); err != nil {
			log.Printf("storage: failed to evict %s: %v", sessions[i].key, err)
			continue
		}
		removed++
	}
	log.Printf("storage: cleared %d old sessions", removed)
	return removed
}
