package compliance

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gemreg/pkg/domain"
	"gemreg/pkg/platform/sentinel"
)

// RedisOracle answers list membership from two Redis sets maintained by an
// external compliance system. The registry only reads; list curation happens
// out of band.
type RedisOracle struct {
	client   redis.UniversalClient
	allowKey string
	denyKey  string
}

// NewRedisOracle constructs an oracle over the given set keys.
func NewRedisOracle(client redis.UniversalClient, allowKey, denyKey string) *RedisOracle {
	return &RedisOracle{client: client, allowKey: allowKey, denyKey: denyKey}
}

func (o *RedisOracle) IsAllowListed(ctx context.Context, addr domain.Address) (bool, error) {
	return o.isMember(ctx, o.allowKey, addr)
}

func (o *RedisOracle) IsDenyListed(ctx context.Context, addr domain.Address) (bool, error) {
	return o.isMember(ctx, o.denyKey, addr)
}

func (o *RedisOracle) isMember(ctx context.Context, key string, addr domain.Address) (bool, error) {
	ok, err := o.client.SIsMember(ctx, key, addr.String()).Result()
	if err != nil {
		return false, fmt.Errorf("sismember %s: %v: %w", key, err, sentinel.ErrUnavailable)
	}
	return ok, nil
}
