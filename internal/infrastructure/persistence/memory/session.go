package memory

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// SessionStore 未启用Redis时的进程内会话存储
// 单实例有效,重启即失效
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[uint]entry[map[string]interface{}]
	blacklist map[string]entry[struct{}]
	now       func() time.Time
}

type entry[T any] struct {
	value    T
	expireAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// NewSessionStore 创建会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  map[uint]entry[map[string]interface{}]{},
		blacklist: map[string]entry[struct{}]{},
		now:       time.Now,
	}
}

func (s *SessionStore) expireAt(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *SessionStore) SaveSession(_ context.Context, staffID uint, data map[string]interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]interface{}, len(data))
	for k, v := range data {
		cp[k] = v
	}
	s.sessions[staffID] = entry[map[string]interface{}]{value: cp, expireAt: s.expireAt(ttl)}
	return nil
}

// GetSession 不存在或已过期返回ErrUnauthorized
func (s *SessionStore) GetSession(_ context.Context, staffID uint) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[staffID]
	if !ok || e.expired(s.now()) {
		delete(s.sessions, staffID)
		return nil, apperrors.ErrUnauthorized
	}
	return e.value, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, staffID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, staffID)
	return nil
}

func (s *SessionStore) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = entry[struct{}]{expireAt: s.expireAt(ttl)}
	return nil
}

func (s *SessionStore) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.blacklist[token]
	if !ok {
		return false, nil
	}
	if e.expired(s.now()) {
		delete(s.blacklist, token)
		return false, nil
	}
	return true, nil
}
