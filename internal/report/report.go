// Package report delivers team summary messages to an outbound channel.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Message is one summary addressed to one recipient.
type Message struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	TeamID    uint64    `json:"teamId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink accepts messages for delivery.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// RedisOutbox appends messages to a Redis list drained by an external mailer.
type RedisOutbox struct {
	client *redis.Client
	key    string
}

func NewRedisOutbox(client *redis.Client, key string) *RedisOutbox {
	return &RedisOutbox{client: client, key: key}
}

func (o *RedisOutbox) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := o.client.RPush(ctx, o.key, payload).Err(); err != nil {
		return fmt.Errorf("push report to %s: %w", o.key, err)
	}
	return nil
}

// LogSink writes messages to the log instead of delivering them.
type LogSink struct {
	logger log.FieldLogger
}

func NewLogSink(logger log.FieldLogger) *LogSink {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, msg Message) error {
	s.logger.WithFields(log.Fields{
		"to":      msg.To,
		"team":    msg.TeamID,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}
