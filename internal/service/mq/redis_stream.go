package mq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"smartwallet-core/pkg/logger"
)

// RedisProducer implements Producer on Redis Streams.
type RedisProducer struct {
	client *redis.Client
}

func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{
		client: client,
	}
}

// Publish appends the message to the stream named after the topic.
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()

	if err != nil {
		return fmt.Errorf("redis xadd error: %w", err)
	}

	return nil
}

// RedisConsumer implements Consumer on a Redis Streams consumer group.
type RedisConsumer struct {
	client *redis.Client
	group  string
	name   string
}

func NewRedisConsumer(client *redis.Client, group, name string) *RedisConsumer {
	return &RedisConsumer{
		client: client,
		group:  group,
		name:   name,
	}
}

// Subscribe blocks reading the stream until ctx is cancelled.
func (c *RedisConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	// XGROUP CREATE <stream> <group> $ MKSTREAM
	err := c.client.XGroupCreateMkStream(ctx, topic, c.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group failed: %w", err)
	}

	logger.Info("redis stream consumer subscribed", zap.String("topic", topic), zap.String("group", c.group))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    c.group,
				Consumer: c.name,
				Streams:  []string{topic, ">"},
				Count:    1,
				Block:    2 * time.Second,
			}).Result()

			if err != nil {
				if err == redis.Nil || ctx.Err() != nil {
					continue
				}
				logger.Error("redis stream read failed", zap.String("topic", topic), zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}

			for _, stream := range streams {
				for _, m := range stream.Messages {
					msg := &Message{
						ID:    m.ID,
						Topic: topic,
					}
					if key, ok := m.Values["key"].(string); ok {
						msg.Key = key
					}
					if payload, ok := m.Values["payload"].(string); ok {
						msg.Payload = []byte(payload)
					}

					if err := handler(msg); err != nil {
						// left unacked; redelivered via the pending list
						logger.Error("redis stream handler failed", zap.String("topic", topic), zap.Error(err))
						continue
					}

					if err := c.client.XAck(ctx, topic, c.group, m.ID).Err(); err != nil {
						logger.Error("redis stream ack failed", zap.String("topic", topic), zap.Error(err))
					}
				}
			}
		}
	}
}

func (c *RedisConsumer) Close() error {
	return nil
}
