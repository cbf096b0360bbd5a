package agent

import (
	"context"
	"fmt"
	"time"
)

// SessionStore keeps sessions by id. Implementations hand out copies, so a
// caller owns the session it got until it puts it back.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Put(ctx context.Context, session *Session) error
	Remove(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that can evict idle sessions themselves.
type Sweeper interface {
	Sweep(ctx context.Context, idleSince time.Time) (int, error)
}

type CacheSessionStore struct {
	core      Cache[*Session]
	namespace string
}

func NewCacheSessionStore(core Cache[*Session], namespace string) *CacheSessionStore {
	return &CacheSessionStore{core: core, namespace: namespace}
}

func NewMemorySessionStore() *CacheSessionStore {
	return NewCacheSessionStore(NewMemoryCache[*Session](), "session")
}

func (c *CacheSessionStore) key(id string) string {
	return c.namespace + ":" + id
}

func (c *CacheSessionStore) Get(ctx context.Context, id string) (*Session, bool, error) {
	s, ok, err := c.core.Get(ctx, c.key(id))
	if err != nil || !ok {
		return nil, ok, err
	}
	return s.Clone(), true, nil
}

func (c *CacheSessionStore) Put(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	return c.core.Set(ctx, c.key(session.ID), session.Clone())
}

func (c *CacheSessionStore) Remove(ctx context.Context, id string) error {
	return c.core.Del(ctx, c.key(id))
}

type rangeCache interface {
	Range(ctx context.Context, fn func(key string, val *Session) bool) error
}

// Sweep removes sessions not updated since idleSince. Caches that cannot be
// enumerated, such as Redis, expire keys on their own and report zero.
func (c *CacheSessionStore) Sweep(ctx context.Context, idleSince time.Time) (int, error) {
	rc, ok := c.core.(rangeCache)
	if !ok {
		return 0, nil
	}
	var expired []string
	err := rc.Range(ctx, func(key string, val *Session) bool {
		if val != nil && val.UpdatedAt.Before(idleSince) {
			expired = append(expired, key)
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	for _, key := range expired {
		if err := c.core.Del(ctx, key); err != nil {
			return 0, fmt.Errorf("failed to evict %s: %w", key, err)
		}
	}
	return len(expired), nil
}
