// Package redisevents publishes committed registry events to a Redis
// channel for external subscribers.
package redisevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"registryd/internal/domain"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "registryd.events"

type Publisher struct {
	client  *redis.Client
	channel string
}

func New(addr, password string, db int, channel string) (*Publisher, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Publisher{client: client, channel: channel}, nil
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
