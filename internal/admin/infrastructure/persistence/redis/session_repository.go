// Package redis stores login sessions in Redis so tokens can be revoked
// server-side before they expire.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/shopbackoffice/internal/admin/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/cache"
)

const sessionKeyPrefix = "admin:session:"

type sessionRepository struct {
	cache *cache.RedisCache
}

func NewSessionRepository(c *cache.RedisCache) domain.SessionRepository {
	return &sessionRepository{cache: c}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}
	return r.cache.SetJSON(ctx, sessionKey(session.ID), session, ttl)
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := r.cache.GetJSON(ctx, sessionKey(id), &session); err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, sessionKey(id))
}

func sessionKey(id string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, id)
}
