// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	rstream "github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/config"
)

// Backend names accepted in config.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// redisPingTimeout bounds the connectivity check when opening the redis backend.
const redisPingTimeout = 3 * time.Second

// New builds a bridge for the configured backend.
func New(cfg config.EventsConfig, log zerolog.Logger) (*Bridge, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(cfg.Topic, log), nil
	case BackendRedis:
		return NewRedis(cfg.RedisAddr, cfg.Topic, log)
	default:
		return nil, errors.Errorf("events: unknown backend %q", cfg.Backend)
	}
}

// NewMemory returns a bridge over an in-process gochannel.
func NewMemory(topic string, log zerolog.Logger) *Bridge {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: DefaultQueueSize,
		// Keeps delivery in publish order.
		BlockPublishUntilSubscriberAck: true,
	}, NewLoggerAdapter(log))
	return NewBridge(ch, ch, topic, log)
}

// NewRedis returns a bridge over Redis Streams at addr. Subscribers read in
// fan-out mode, so every process following the stream sees every event.
func NewRedis(addr, topic string, log zerolog.Logger) (*Bridge, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connect to redis at %s", addr)
	}

	marshaler := rstream.DefaultMarshallerUnmarshaller{}
	logger := NewLoggerAdapter(log)

	pub, err := rstream.NewPublisher(rstream.PublisherConfig{
		Client:     client,
		Marshaller: marshaler,
	}, logger)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "create redis publisher")
	}

	sub, err := rstream.NewSubscriber(rstream.SubscriberConfig{
		Client:       client,
		Unmarshaller: marshaler,
		Consumer:     consumerName(),
	}, logger)
	if err != nil {
		pub.Close()
		client.Close()
		return nil, errors.Wrap(err, "create redis subscriber")
	}

	b := NewBridge(pub, sub, topic, log, client)
	// The publisher and subscriber may close the shared client themselves.
	b.ignoreCloseErr = func(err error) bool { return errors.Is(err, redis.ErrClosed) }
	return b, nil
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "summify"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
