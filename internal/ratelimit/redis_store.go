// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with shared fixed-window counters in Redis.
// Use it when multiple Sentinel instances sit behind a load balancer and
// limits must hold globally rather than per instance.
//
// Each key maps to a counter that is INCRed atomically and expired by Redis
// at the window boundary, so no sweep is needed.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed counter store and verifies
// connectivity with a ping.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: "sentinel:rl:",
	}, nil
}

// Increment atomically bumps the counter for key and compares it against the
// policy. The expiry is set only when the key is first created, which pins
// the window start to the first request.
func (s *RedisStore) Increment(ctx context.Context, key string, policy Policy, _ time.Time) (Decision, error) {
	rkey := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	// go-redis has no PExpireNX wrapper; issue PEXPIRE ... NX directly.
	pipe.Do(ctx, "pexpire", rkey, policy.Window.Milliseconds(), "nx")
	ttl := pipe.PTTL(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis increment: %w", err)
	}

	count := int(incr.Val())
	resetAt := time.Now().Add(ttl.Val())

	// The INCR has already happened; an over-limit bump leaves the counter
	// above MaxRequests, which remaining() clamps to zero.
	return Decision{
		Allowed:   count <= policy.MaxRequests && policy.MaxRequests > 0,
		Remaining: remaining(policy.MaxRequests, count),
		ResetAt:   resetAt,
	}, nil
}

// Peek reads the counter without mutating it.
func (s *RedisStore) Peek(ctx context.Context, key string, policy Policy, now time.Time) (Decision, error) {
	rkey := s.prefix + key

	pipe := s.client.TxPipeline()
	get := pipe.Get(ctx, rkey)
	ttl := pipe.PTTL(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Decision{}, fmt.Errorf("redis peek: %w", err)
	}

	count, err := get.Int()
	if err == redis.Nil {
		return Decision{
			Allowed:   policy.MaxRequests > 0,
			Remaining: policy.MaxRequests,
			ResetAt:   now.Add(policy.Window),
		}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("redis peek: %w", err)
	}

	return Decision{
		Allowed:   count < policy.MaxRequests,
		Remaining: remaining(policy.MaxRequests, count),
		ResetAt:   now.Add(ttl.Val()),
	}, nil
}

// Sweep is a no-op: Redis expires window keys itself.
func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
