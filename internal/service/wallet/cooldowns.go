package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type redisCooldowns struct {
	rdb *goredis.Client
}

func NewRedisCooldowns(rdb *goredis.Client) Cooldowns {
	return &redisCooldowns{rdb: rdb}
}

// Claim is a SET NX with the window as TTL: the first caller wins, everyone
// else waits for the key to expire.
func (c *redisCooldowns) Claim(ctx context.Context, userID uuid.UUID, window time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, "faucet:"+userID.String(), "1", window).Result()
}
