package config

import (
	"log"
	"os"

	"github.com/unretain/polyxmobile-sub002/services/redis"
)

// Connect to Redis
func Connect_redis() (*redis.RedisClient, error) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient, err := redis.InitRedis(redisAddr, 0)
	if err != nil {
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}
