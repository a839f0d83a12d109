package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const usedTicketTTL = 24 * time.Hour

func InitRedis(host, port, password string, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

// IsTicketUsed is the fast path for repeat scans of an already
// redeemed ticket; the database remains the source of truth.
func IsTicketUsed(ctx context.Context, rdb *redis.Client, identifier string) (bool, error) {
	key := fmt.Sprintf("ticket:used:%s", identifier)
	n, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func MarkTicketUsed(ctx context.Context, rdb *redis.Client, identifier string) error {
	key := fmt.Sprintf("ticket:used:%s", identifier)
	return rdb.Set(ctx, key, "1", usedTicketTTL).Err()
}
