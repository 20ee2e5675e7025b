package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so repositories can accept a real
// client, a miniredis-backed client or a redismock client.
type Client interface {
	redis.UniversalClient
}
