package history

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	messages []Message
	expires  time.Time
}

type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memorySession
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

func (s *MemoryStore) Append(_ context.Context, session string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	sess, ok := s.sessions[session]
	if !ok {
		sess = &memorySession{}
		s.sessions[session] = sess
	}
	sess.messages = append(sess.messages, msgs...)
	sess.expires = now.Add(s.ttl)
	return nil
}

func (s *MemoryStore) List(_ context.Context, session string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	sess, ok := s.sessions[session]
	if !ok {
		return []Message{}, nil
	}
	sess.expires = now.Add(s.ttl)
	return append([]Message(nil), sess.messages...), nil
}

func (s *MemoryStore) Reset(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, session)
	return nil
}

func (s *MemoryStore) evictLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.After(sess.expires) {
			delete(s.sessions, id)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
