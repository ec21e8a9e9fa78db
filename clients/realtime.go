package clients

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"marketplace-client/models"
)

// NewRedisClient initializes and returns a Redis client
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// RealtimeFeed delivers notifications pushed by the backend over a per-user
// pub/sub channel. Channel errors are logged and the stream simply ends; there
// is no reconnection here.
type RealtimeFeed struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRealtimeFeed(client *redis.Client, logger *zap.Logger) *RealtimeFeed {
	return &RealtimeFeed{client: client, logger: logger}
}

func channelFor(userID string) string {
	return "notifications:user:" + userID
}

// Subscribe opens the user's push channel and invokes onNew for every
// delivered notification until the returned handle is closed.
func (f *RealtimeFeed) Subscribe(ctx context.Context, userID string, onNew func(models.Notification)) (io.Closer, error) {
	pubsub := f.client.Subscribe(ctx, channelFor(userID))

	// Confirm the subscription before handing out the handle.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		for msg := range pubsub.Channel() {
			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				f.logger.Warn("dropping malformed push payload",
					zap.String("channel", msg.Channel),
					zap.Error(err),
				)
				continue
			}
			onNew(n)
		}
	}()

	return &subscription{pubsub: pubsub}, nil
}

type subscription struct {
	pubsub *redis.PubSub
	once   sync.Once
	err    error
}

// Close tears the subscription down; safe to call more than once.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.err = s.pubsub.Close()
	})
	return s.err
}
