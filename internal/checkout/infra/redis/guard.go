package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront/pkg/logger"
	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "storefront:checkout:"

// releaseScript deletes the key only if it still holds our token, so an
// expired guard taken over by another checkout is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard is a per-cart checkout guard backed by SET NX PX. The TTL bounds how
// long a crashed checkout blocks the cart.
type Guard struct {
	client *goredis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewGuard(client *goredis.Client, ttl time.Duration, log *slog.Logger) *Guard {
	return &Guard{client: client, ttl: ttl, log: logger.OrDiscard(log)}
}

func (g *Guard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, keyPrefix+key, token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire checkout guard: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The request ctx may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.client, []string{keyPrefix + key}, token).Err(); err != nil {
			g.log.Warn("release checkout guard", slog.String("key", key), slog.Any("err", err))
		}
	}
	return release, true, nil
}
