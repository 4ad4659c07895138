package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so stores can take a single, mockable
// dependency whether the deployment is standalone, cluster or sentinel.
type Client interface {
	redis.UniversalClient
}

// Pipeliner wraps redis.Pipeliner for batch writes.
type Pipeliner interface {
	redis.Pipeliner
}
