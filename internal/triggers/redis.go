package triggers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisPublisher publishes mutations on a Redis pub/sub channel for the
// functions worker.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, m Mutation) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mutation: %w", err)
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// RedisSubscriber feeds mutations from a Redis channel into a Dispatcher.
type RedisSubscriber struct {
	client     *redis.Client
	channel    string
	dispatcher *Dispatcher
}

func NewRedisSubscriber(client *redis.Client, channel string, dispatcher *Dispatcher) *RedisSubscriber {
	return &RedisSubscriber{client: client, channel: channel, dispatcher: dispatcher}
}

// Run blocks until ctx is cancelled or the subscription breaks. ready, when
// non-nil, is closed once the subscription is confirmed.
func (s *RedisSubscriber) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	log.WithField("channel", s.channel).Info("listening for mutations")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription to %s closed", s.channel)
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

func (s *RedisSubscriber) handle(ctx context.Context, payload string) {
	var m Mutation
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		log.WithError(err).WithField("channel", s.channel).Warn("dropping malformed mutation")
		return
	}
	// Handler failures are already logged by the dispatcher; recompute
	// handlers converge on the next mutation for the same key.
	_ = s.dispatcher.Dispatch(ctx, m)
}
