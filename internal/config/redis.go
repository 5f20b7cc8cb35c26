package config

import (
	"os"
	"sync"
)

type RedisConfig struct {
	// URL is a redis connection URL, e.g. redis://localhost:6379/0.
	// Empty disables the job status cache.
	URL string
}

var (
	redisConfig *RedisConfig
	redisOnce   sync.Once
)

func LoadRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		redisConfig = &RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		}
	})
	return redisConfig
}
