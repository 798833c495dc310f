package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/blip0/confcache/pkg/cache"
)

// scanBatchSize bounds how many keys a single SCAN iteration asks for.
const scanBatchSize = 100

// Config holds all required info for initializing the redis driver
type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database int32  `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RedisCache holds the handler for the redis client and auxiliary info
type RedisCache struct {
	client redis.UniversalClient
}

var _ cache.Cache = (*RedisCache)(nil)

// NewCache inits a RedisCache instance
func NewCache(config *Config) (*RedisCache, error) {
	if config == nil {
		config = getDefaultConfig()
	}

	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	options := &redis.UniversalOptions{
		Addrs:    []string{addr},
		Username: config.Username,
		Password: config.Password,
		DB:       int(config.Database),
	}

	redisClient := redis.NewUniversalClient(options)

	// Enable OpenTelemetry instrumentation
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		return nil, fmt.Errorf("failed to instrument redis: %w", err)
	}
	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		return nil, fmt.Errorf("failed to instrument redis metrics: %w", err)
	}

	rc := RedisCache{
		client: redisClient,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &rc, nil
}

func getDefaultConfig() *Config {
	return &Config{
		Username: "",
		Host:     "localhost",
		Port:     "6379",
		Database: 0,
		Password: "",
	}
}

// Set - sets a key value pair in redis
func (rc *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get - gets a value from redis
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", cache.ErrKeyNotFound
		}
		return "", err
	}
	return val, nil
}

// Delete - deletes keys from redis, returning how many existed
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return rc.client.Del(ctx, keys...).Result()
}

// DeletePattern deletes every key matching the glob pattern using SCAN,
// never KEYS, so large keyspaces don't block the server.
func (rc *RedisCache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	var cursor uint64

	for {
		keys, next, err := rc.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rc.client.Del(ctx, keys...).Result()
			deleted += n
			if err != nil {
				return deleted, err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

// KeysPattern returns all keys matching the glob pattern.
func (rc *RedisCache) KeysPattern(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := rc.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// SAdd adds members to the set stored at key.
func (rc *RedisCache) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	return rc.client.SAdd(ctx, key, args...).Err()
}

// SRem removes members from the set stored at key.
func (rc *RedisCache) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	return rc.client.SRem(ctx, key, args...).Err()
}

// SMembers returns all members of the set stored at key.
func (rc *RedisCache) SMembers(ctx context.Context, key string) ([]string, error) {
	return rc.client.SMembers(ctx, key).Result()
}

// Expire sets the TTL on an existing key.
func (rc *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return rc.client.Expire(ctx, key, ttl).Err()
}

// Publish sends payload to a channel and returns the subscriber count.
func (rc *RedisCache) Publish(ctx context.Context, channel, payload string) (int64, error) {
	return rc.client.Publish(ctx, channel, payload).Result()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	msgs   chan cache.Message
	done   chan struct{}
}

func (s *redisSubscription) Messages() <-chan cache.Message {
	return s.msgs
}

func (s *redisSubscription) Close() error {
	close(s.done)
	return s.pubsub.Close()
}

// Subscribe opens a pub/sub subscription on the given channels.
func (rc *RedisCache) Subscribe(ctx context.Context, channels ...string) (cache.Subscription, error) {
	pubsub := rc.client.Subscribe(ctx, channels...)
	// Wait for the confirmation so publishes after Subscribe returns are
	// guaranteed to be seen.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		msgs:   make(chan cache.Message, 64),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.msgs)
		for msg := range pubsub.Channel() {
			select {
			case sub.msgs <- cache.Message{Channel: msg.Channel, Payload: msg.Payload}:
			case <-sub.done:
				return
			}
		}
	}()

	return sub, nil
}

// Ping checks the connection to the redis server.
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Disconnect ... disconnects from the redis server
func (rc *RedisCache) Disconnect() error {
	return rc.client.Close()
}
