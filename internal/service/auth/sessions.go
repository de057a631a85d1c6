package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// SessionStore tracks live refresh sessions. A session disappearing from the
// store invalidates every refresh token minted against it.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error
	UserID(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type redisSessions struct {
	rdb *goredis.Client
}

func NewRedisSessions(rdb *goredis.Client) SessionStore {
	return &redisSessions{rdb: rdb}
}

func sessionKey(sessionID uuid.UUID) string {
	return "session:" + sessionID.String()
}

func (s *redisSessions) Save(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), userID.String(), ttl).Err()
}

func (s *redisSessions) UserID(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	val, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *redisSessions) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
