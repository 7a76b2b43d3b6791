package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/veto/internal/scrape"
)

// ResultsStream is the Redis stream refresh events land on. Entries are
// ephemeral fan-out only; nothing in the process ever reads them back.
const ResultsStream = "veto:results"

// RedisPublisher publishes result refresh events to a Redis stream
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPublisher{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// PublishResults appends a refresh event for one cache dimension.
func (rp *RedisPublisher) PublishResults(ctx context.Context, dimension string, records []scrape.MatchRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: ResultsStream,
		Values: map[string]interface{}{
			"dimension": dimension,
			"count":     len(records),
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
